package dataset

import (
	"fmt"
	"slices"
	"time"
)

// Column names with fixed meaning in every dataset.
const (
	DateColumn  = "calendarDate"
	WeekColumn  = "week"
	MonthColumn = "month"
	YearColumn  = "year"
)

// DateLayout is the textual form of calendar dates on every boundary.
const DateLayout = "2006-01-02"

// TimeColumns lists the calendar columns in display order.
//
//nolint:gochecknoglobals // fixed catalog
var TimeColumns = []string{DateColumn, WeekColumn, MonthColumn, YearColumn}

// IsTimeColumn reports whether name is one of TimeColumns.
func IsTimeColumn(name string) bool {
	return slices.Contains(TimeColumns, name)
}

// Kind is the semantic type of a column.
type Kind int

const (
	KindNumber Kind = iota
	KindDate
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number":
		return KindNumber, nil
	case "date":
		return KindDate, nil
	case "text":
		return KindText, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

// Cell holds one value. Only the field matching the column Kind is meaningful.
type Cell struct {
	Null bool
	Num  float64
	Date time.Time
	Text string
}

func NullCell() Cell { return Cell{Null: true} }

func NumberCell(v float64) Cell { return Cell{Num: v} }

// DateCell drops the time of day and pins the date to UTC.
func DateCell(t time.Time) Cell { return Cell{Date: civilDate(t)} }

func TextCell(s string) Cell { return Cell{Text: s} }

// Value returns the cell as a JSON friendly value: nil, float64, or a string.
func (c Cell) Value(kind Kind) any {
	if c.Null {
		return nil
	}
	switch kind {
	case KindDate:
		return c.Date.Format(DateLayout)
	case KindText:
		return c.Text
	default:
		return c.Num
	}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Column is a named, typed vector of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// NewColumn returns a column of n null cells.
func NewColumn(name string, kind Kind, n int) *Column {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = NullCell()
	}
	return &Column{Name: name, Kind: kind, Cells: cells}
}

func (c *Column) clone() *Column {
	return &Column{Name: c.Name, Kind: c.Kind, Cells: slices.Clone(c.Cells)}
}

// Table is a column-oriented dataset. Every column has Len cells and column
// names are unique.
type Table struct {
	rows    int
	columns []*Column
	index   map[string]int
}

// NewTable returns an empty table with room for rows rows.
func NewTable(rows int) *Table {
	return &Table{rows: rows, index: make(map[string]int)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column {
	if t == nil {
		return nil
	}
	return t.columns
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		names = append(names, c.Name)
	}
	return names
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Set adds col, replacing an existing column of the same name in place.
func (t *Table) Set(col *Column) error {
	if len(col.Cells) != t.rows {
		return fmt.Errorf("column %q has %d cells, table has %d rows", col.Name, len(col.Cells), t.rows)
	}
	if i, ok := t.index[col.Name]; ok {
		t.columns[i] = col
		return nil
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := NewTable(t.rows)
	for _, c := range t.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// reorder permutes every column so that row i becomes row perm[i].
func (t *Table) reorder(perm []int) {
	for _, c := range t.columns {
		cells := make([]Cell, len(perm))
		for i, p := range perm {
			cells[i] = c.Cells[p]
		}
		c.Cells = cells
	}
}

// Equal reports whether both tables hold the same columns, kinds and values
// in the same order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Cells {
			if !cellEqual(c.Kind, c.Cells[r], oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(kind Kind, a, b Cell) bool {
	if a.Null || b.Null {
		return a.Null == b.Null
	}
	switch kind {
	case KindDate:
		return a.Date.Equal(b.Date)
	case KindText:
		return a.Text == b.Text
	default:
		return a.Num == b.Num
	}
}
