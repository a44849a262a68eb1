package dataset

import (
	"errors"
	"fmt"
)

// Merge concatenates parsed tables in input order. The column set is the
// union of all inputs in first-seen order; rows from a table lacking a column
// hold null there. A single failed input fails the whole merge.
func Merge(results []ParseResult) (*Table, error) {
	if len(results) == 0 {
		return nil, ErrEmptyInput
	}

	var failed []*FileError
	for i, res := range results {
		err := res.Err
		if err == nil && res.Table == nil {
			err = errors.New("no table produced")
		}
		if err == nil {
			if col, ok := res.Table.Column(DateColumn); !ok || col.Kind != KindDate {
				err = fmt.Errorf("%w: missing %s column", ErrFormat, DateColumn)
			}
		}
		if err != nil {
			failed = append(failed, &FileError{Index: i, Source: res.Source, Err: err})
		}
	}
	if len(failed) > 0 {
		return nil, &MergeError{Files: failed}
	}

	rows := 0
	var names []string
	kinds := make(map[string]Kind)
	for _, res := range results {
		rows += res.Table.Len()
		for _, col := range res.Table.Columns() {
			if _, ok := kinds[col.Name]; ok {
				continue
			}
			kinds[col.Name] = col.Kind
			names = append(names, col.Name)
		}
	}

	merged := NewTable(rows)
	for _, name := range names {
		col := NewColumn(name, kinds[name], rows)
		offset := 0
		for i, res := range results {
			src, ok := res.Table.Column(name)
			if ok {
				if src.Kind != col.Kind {
					return nil, &MergeError{Files: []*FileError{{
						Index:  i,
						Source: res.Source,
						Err:    fmt.Errorf("%w: column %s is %s, expected %s", ErrFormat, name, src.Kind, col.Kind),
					}}}
				}
				copy(col.Cells[offset:], src.Cells)
			}
			offset += res.Table.Len()
		}
		if err := merged.Set(col); err != nil {
			return nil, err
		}
	}

	return merged, nil
}
