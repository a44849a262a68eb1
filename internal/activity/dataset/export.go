package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes t with a header row. Dates use DateLayout, numbers their
// shortest exact form, and nulls an empty field.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	cols := t.Columns()
	if err := cw.Write(t.Names()); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for r := 0; r < t.Len(); r++ {
		for i, c := range cols {
			record[i] = formatCell(c.Kind, c.Cells[r])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(kind Kind, c Cell) string {
	if c.Null {
		return ""
	}
	switch kind {
	case KindDate:
		return c.Date.Format(DateLayout)
	case KindText:
		return c.Text
	default:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	}
}
