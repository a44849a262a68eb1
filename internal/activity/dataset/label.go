package dataset

import (
	"sort"
	"strings"
	"unicode"
)

// Option is a display label paired with the raw identifier it stands for.
type Option struct {
	Label string
	Value string
}

// Humanize turns a camelCase identifier into a sentence-cased label, e.g.
// "restingHeartRate" becomes "Resting heart rate".
func Humanize(id string) string {
	if id == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range []rune(id) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	runes := []rune(strings.ToLower(b.String()))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Options lists every non-time column of t, sorted by identifier.
func Options(t *Table) []Option {
	var names []string
	for _, name := range t.Names() {
		if IsTimeColumn(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]Option, 0, len(names))
	for _, name := range names {
		opts = append(opts, Option{Label: Humanize(name), Value: name})
	}
	return opts
}

// GroupByOptions lists the calendar columns a query can group by.
func GroupByOptions() []Option {
	opts := make([]Option, 0, len(TimeColumns))
	for _, name := range TimeColumns {
		opts = append(opts, Option{Label: Humanize(name), Value: name})
	}
	return opts
}

// FunctionOptions lists the aggregate functions.
func FunctionOptions() []Option {
	opts := make([]Option, 0, len(Functions))
	for _, fn := range Functions {
		opts = append(opts, Option{Label: Humanize(string(fn)), Value: string(fn)})
	}
	return opts
}
