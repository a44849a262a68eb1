package dataset

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// Function is an aggregate function name.
type Function string

const (
	FuncMedian Function = "median"
	FuncMean   Function = "mean"
	FuncSum    Function = "sum"
	FuncMin    Function = "min"
	FuncMax    Function = "max"
	FuncCount  Function = "count"
)

// Functions lists the supported aggregate functions in display order.
//
//nolint:gochecknoglobals // fixed catalog
var Functions = []Function{FuncMedian, FuncMean, FuncSum, FuncMin, FuncMax, FuncCount}

// ParseFunction validates name against Functions.
func ParseFunction(name string) (Function, error) {
	fn := Function(name)
	if !slices.Contains(Functions, fn) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn, nil
}

// Request selects what to aggregate. A request with any empty field is
// incomplete and produces no result.
type Request struct {
	GroupColumn string
	ValueColumn string
	Function    string
}

// Complete reports whether every field is set.
func (r Request) Complete() bool {
	return r.GroupColumn != "" && r.ValueColumn != "" && r.Function != ""
}

// Result is an aggregated table of two columns, the group key and the
// aggregated value, ordered by the group key.
type Result struct {
	Request    Request
	Table      *Table
	Title      string
	GroupLabel string
	ValueLabel string
}

// Aggregate groups t by req.GroupColumn and reduces req.ValueColumn with
// req.Function. It returns a nil result and nil error when req is incomplete
// or t is nil.
func Aggregate(t *Table, req Request) (*Result, error) {
	if t == nil || !req.Complete() {
		return nil, nil
	}

	fn, err := ParseFunction(req.Function)
	if err != nil {
		return nil, err
	}

	groupCol, ok := t.Column(req.GroupColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, req.GroupColumn)
	}
	valueCol, ok := t.Column(req.ValueColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, req.ValueColumn)
	}
	if req.GroupColumn == req.ValueColumn {
		return nil, fmt.Errorf("%w: value column %q is also the group column", ErrUnknownColumn, req.ValueColumn)
	}
	if fn != FuncCount && valueCol.Kind != KindNumber {
		return nil, fmt.Errorf("%w: %s needs a numeric column, %q is %s", ErrUnknownColumn, fn, req.ValueColumn, valueCol.Kind)
	}

	type group struct {
		key    Cell
		values []float64
		count  int
	}
	groups := make(map[any]*group)
	var order []*group

	for i, key := range groupCol.Cells {
		if key.Null {
			continue
		}
		k := groupKey(groupCol.Kind, key)
		g, ok := groups[k]
		if !ok {
			g = &group{key: key}
			groups[k] = g
			order = append(order, g)
		}
		v := valueCol.Cells[i]
		if v.Null {
			continue
		}
		g.count++
		if valueCol.Kind == KindNumber {
			g.values = append(g.values, v.Num)
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return cellLess(groupCol.Kind, order[a].key, order[b].key)
	})

	keys := &Column{Name: groupCol.Name, Kind: groupCol.Kind, Cells: make([]Cell, len(order))}
	values := &Column{Name: valueCol.Name, Kind: KindNumber, Cells: make([]Cell, len(order))}
	for i, g := range order {
		keys.Cells[i] = g.key
		if fn == FuncCount {
			values.Cells[i] = NumberCell(float64(g.count))
			continue
		}
		values.Cells[i] = reduce(fn, g.values)
	}

	out := NewTable(len(order))
	if err := out.Set(keys); err != nil {
		return nil, err
	}
	if err := out.Set(values); err != nil {
		return nil, err
	}

	return &Result{
		Request:    req,
		Table:      out,
		Title:      fmt.Sprintf("%s of %s by %s", titleWord(string(fn)), Humanize(valueCol.Name), groupCol.Name),
		GroupLabel: Humanize(groupCol.Name),
		ValueLabel: Humanize(valueCol.Name),
	}, nil
}

func groupKey(kind Kind, c Cell) any {
	switch kind {
	case KindDate:
		return c.Date.Unix()
	case KindText:
		return c.Text
	default:
		return c.Num
	}
}

func cellLess(kind Kind, a, b Cell) bool {
	switch kind {
	case KindDate:
		return a.Date.Before(b.Date)
	case KindText:
		return a.Text < b.Text
	default:
		return a.Num < b.Num
	}
}

// reduce applies fn to the non-null values of one group. Sum of nothing is
// zero; every other function of nothing is null.
func reduce(fn Function, values []float64) Cell {
	if fn == FuncSum {
		var total float64
		for _, v := range values {
			total += v
		}
		return NumberCell(total)
	}
	if len(values) == 0 {
		return NullCell()
	}

	switch fn {
	case FuncMean:
		var total float64
		for _, v := range values {
			total += v
		}
		return NumberCell(total / float64(len(values)))
	case FuncMedian:
		sorted := slices.Clone(values)
		slices.Sort(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return NumberCell(sorted[mid])
		}
		return NumberCell((sorted[mid-1] + sorted[mid]) / 2)
	case FuncMin:
		m := math.Inf(1)
		for _, v := range values {
			m = math.Min(m, v)
		}
		return NumberCell(m)
	case FuncMax:
		m := math.Inf(-1)
		for _, v := range values {
			m = math.Max(m, v)
		}
		return NumberCell(m)
	default:
		return NullCell()
	}
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
