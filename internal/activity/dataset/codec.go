package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const blobVersion = 1

type blob struct {
	Version int          `json:"version"`
	Rows    int          `json:"rows"`
	Columns []blobColumn `json:"columns"`
}

type blobColumn struct {
	Name    string     `json:"name"`
	Kind    string     `json:"kind"`
	Numbers []*float64 `json:"numbers,omitempty"`
	Strings []*string  `json:"strings,omitempty"`
}

// Serialize encodes t for the session store. Dates are written as
// YYYY-MM-DD and nulls as JSON null, so Deserialize restores t exactly.
func Serialize(t *Table) ([]byte, error) {
	out := blob{Version: blobVersion, Rows: t.Len(), Columns: make([]blobColumn, 0, len(t.Columns()))}

	for _, c := range t.Columns() {
		bc := blobColumn{Name: c.Name, Kind: c.Kind.String()}
		switch c.Kind {
		case KindNumber:
			bc.Numbers = make([]*float64, len(c.Cells))
			for i, cell := range c.Cells {
				if !cell.Null {
					v := cell.Num
					bc.Numbers[i] = &v
				}
			}
		case KindDate, KindText:
			bc.Strings = make([]*string, len(c.Cells))
			for i, cell := range c.Cells {
				if cell.Null {
					continue
				}
				s := cell.Text
				if c.Kind == KindDate {
					s = cell.Date.Format(DateLayout)
				}
				bc.Strings[i] = &s
			}
		default:
			return nil, fmt.Errorf("column %s has unsupported kind %d", c.Name, c.Kind)
		}
		out.Columns = append(out.Columns, bc)
	}

	return json.Marshal(out)
}

// Deserialize decodes a blob written by Serialize. An empty blob means no
// dataset was stored yet and yields a nil table with a nil error.
func Deserialize(data []byte) (*Table, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var in blob
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if in.Version != blobVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDeserialize, in.Version)
	}
	if in.Rows < 0 {
		return nil, fmt.Errorf("%w: negative row count", ErrDeserialize)
	}

	tbl := NewTable(in.Rows)
	for _, bc := range in.Columns {
		if _, dup := tbl.Column(bc.Name); dup {
			return nil, fmt.Errorf("%w: duplicate column %s", ErrDeserialize, bc.Name)
		}
		col, err := decodeColumn(bc, in.Rows)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %v", ErrDeserialize, bc.Name, err)
		}
		if err := tbl.Set(col); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
	}

	for _, name := range []string{DateColumn, WeekColumn, MonthColumn} {
		if c, ok := tbl.Column(name); ok && c.Kind != KindDate {
			return nil, fmt.Errorf("%w: column %s must be a date, got %s", ErrDeserialize, name, c.Kind)
		}
	}
	if c, ok := tbl.Column(YearColumn); ok && c.Kind != KindText {
		return nil, fmt.Errorf("%w: column %s must be text, got %s", ErrDeserialize, YearColumn, c.Kind)
	}

	return tbl, nil
}

func decodeColumn(bc blobColumn, rows int) (*Column, error) {
	kind, err := ParseKind(bc.Kind)
	if err != nil {
		return nil, err
	}

	col := &Column{Name: bc.Name, Kind: kind, Cells: make([]Cell, rows)}

	if kind == KindNumber {
		if len(bc.Numbers) != rows || len(bc.Strings) != 0 {
			return nil, fmt.Errorf("expected %d numbers, got %d", rows, len(bc.Numbers))
		}
		for i, v := range bc.Numbers {
			if v == nil {
				col.Cells[i] = NullCell()
				continue
			}
			col.Cells[i] = NumberCell(*v)
		}
		return col, nil
	}

	if len(bc.Strings) != rows || len(bc.Numbers) != 0 {
		return nil, fmt.Errorf("expected %d values, got %d", rows, len(bc.Strings))
	}
	for i, v := range bc.Strings {
		switch {
		case v == nil:
			col.Cells[i] = NullCell()
		case kind == KindText:
			col.Cells[i] = TextCell(*v)
		default:
			d, err := time.Parse(DateLayout, *v)
			if err != nil {
				return nil, err
			}
			col.Cells[i] = DateCell(d)
		}
	}
	return col, nil
}
