package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// UnitRule converts a column whose name ends in Suffix into a new column
// named with Replacement instead, dividing every value by Divisor.
type UnitRule struct {
	Suffix      string
	Replacement string
	Divisor     float64
}

// UnitRules is checked in order and the first match wins. Milliseconds comes
// before Seconds because it shares that tail.
//
//nolint:gochecknoglobals // fixed rule table
var UnitRules = []UnitRule{
	{Suffix: "Milliseconds", Replacement: "Hours", Divisor: 60 * 60 * 1000},
	{Suffix: "Meters", Replacement: "Kilometers", Divisor: 1000},
	{Suffix: "Minutes", Replacement: "Hours", Divisor: 60},
	{Suffix: "Seconds", Replacement: "Hours", Divisor: 60 * 60},
}

// MatchRule returns the first rule whose suffix ends name. Matching is exact
// and case sensitive.
func MatchRule(name string) (UnitRule, bool) {
	for _, r := range UnitRules {
		if strings.HasSuffix(name, r.Suffix) {
			return r, true
		}
	}
	return UnitRule{}, false
}

// Rename swaps the suffix of name for the rule's replacement.
func (r UnitRule) Rename(name string) string {
	return strings.TrimSuffix(name, r.Suffix) + r.Replacement
}

// Derive returns a copy of t with week, month and year buckets, one converted
// column per unit-suffixed numeric column, and rows sorted by DateColumn.
// The sort is stable.
func Derive(t *Table) (*Table, error) {
	dates, ok := t.Column(DateColumn)
	if !ok || dates.Kind != KindDate {
		return nil, fmt.Errorf("%w: missing %s column", ErrFormat, DateColumn)
	}

	out := t.Clone()
	n := out.Len()

	// Unit conversions only look at the columns present before derivation.
	var sources []*Column
	for _, c := range out.Columns() {
		if c.Kind == KindNumber {
			sources = append(sources, c)
		}
	}

	week := &Column{Name: WeekColumn, Kind: KindDate, Cells: make([]Cell, n)}
	month := &Column{Name: MonthColumn, Kind: KindDate, Cells: make([]Cell, n)}
	year := &Column{Name: YearColumn, Kind: KindText, Cells: make([]Cell, n)}
	for i, c := range dates.Cells {
		if c.Null {
			week.Cells[i], month.Cells[i], year.Cells[i] = NullCell(), NullCell(), NullCell()
			continue
		}
		d := civilDate(c.Date)
		weekday := (int(d.Weekday()) + 6) % 7 // Monday is 0
		week.Cells[i] = DateCell(d.AddDate(0, 0, -weekday))
		month.Cells[i] = DateCell(d.AddDate(0, 0, -(d.Day() - 1)))
		year.Cells[i] = TextCell(fmt.Sprintf("%04d", d.Year()))
	}
	for _, c := range []*Column{week, month, year} {
		if err := out.Set(c); err != nil {
			return nil, err
		}
	}

	for _, src := range sources {
		rule, ok := MatchRule(src.Name)
		if !ok {
			continue
		}
		col := &Column{Name: rule.Rename(src.Name), Kind: KindNumber, Cells: make([]Cell, n)}
		for i, c := range src.Cells {
			if c.Null {
				col.Cells[i] = NullCell()
				continue
			}
			col.Cells[i] = NumberCell(c.Num / rule.Divisor)
		}
		if err := out.Set(col); err != nil {
			return nil, err
		}
	}

	sortByDate(out)

	return out, nil
}

func sortByDate(t *Table) {
	dates, _ := t.Column(DateColumn)
	perm := make([]int, t.Len())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return dates.Cells[perm[a]].Date.Before(dates.Cells[perm[b]].Date)
	})
	t.reorder(perm)
}
