package dataset

import (
	"errors"
	"testing"
)

func sampleDataset(t *testing.T) *Table {
	t.Helper()
	merged, err := Merge([]ParseResult{
		{Table: mustParse(t, `[
			{"calendarDate": "2023-12-31", "totalDistanceMeters": 4200.5, "restingHeartRate": 55},
			{"calendarDate": "2024-01-01", "totalDistanceMeters": 5000}
		]`)},
		{Table: mustParse(t, `[{"calendarDate": "2024-01-08", "activeSeconds": 3600}]`)},
	})
	if err != nil {
		t.Fatalf("Merge() err = %v", err)
	}
	out, err := Derive(merged)
	if err != nil {
		t.Fatalf("Derive() err = %v", err)
	}
	return out
}

func TestSerializeRoundTrip(t *testing.T) {
	tbl := sampleDataset(t)

	blob, err := Serialize(tbl)
	if err != nil {
		t.Fatalf("Serialize() err = %v", err)
	}

	got, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("Deserialize() err = %v", err)
	}
	if !got.Equal(tbl) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", got.Names(), tbl.Names())
	}

	for name, kind := range map[string]Kind{
		DateColumn:  KindDate,
		WeekColumn:  KindDate,
		MonthColumn: KindDate,
		YearColumn:  KindText,
	} {
		col, ok := got.Column(name)
		if !ok || col.Kind != kind {
			t.Fatalf("column %s kind = %v, want %s", name, col, kind)
		}
	}
}

func TestSerializeRoundTripEmptyTable(t *testing.T) {
	tbl := NewTable(0)
	if err := tbl.Set(NewColumn(DateColumn, KindDate, 0)); err != nil {
		t.Fatalf("Set() err = %v", err)
	}

	blob, err := Serialize(tbl)
	if err != nil {
		t.Fatalf("Serialize() err = %v", err)
	}
	got, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("Deserialize() err = %v", err)
	}
	if got == nil || !got.Equal(tbl) {
		t.Fatalf("round trip mismatch for empty table: %+v", got)
	}
}

func TestDeserializeNoDataset(t *testing.T) {
	for _, blob := range [][]byte{nil, []byte(""), []byte("  \n"), []byte("null")} {
		tbl, err := Deserialize(blob)
		if err != nil || tbl != nil {
			t.Fatalf("Deserialize(%q) = %v, %v; want nil, nil", blob, tbl, err)
		}
	}
}

func TestDeserializeCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"version":`,
		"bad version":    `{"version": 9, "rows": 0, "columns": []}`,
		"bad kind":       `{"version": 1, "rows": 1, "columns": [{"name": "a", "kind": "blob", "numbers": [1]}]}`,
		"short column":   `{"version": 1, "rows": 2, "columns": [{"name": "a", "kind": "number", "numbers": [1]}]}`,
		"bad date":       `{"version": 1, "rows": 1, "columns": [{"name": "calendarDate", "kind": "date", "strings": ["13/01/2024"]}]}`,
		"date as number": `{"version": 1, "rows": 1, "columns": [{"name": "week", "kind": "number", "numbers": [1]}]}`,
		"year as date":   `{"version": 1, "rows": 1, "columns": [{"name": "year", "kind": "date", "strings": ["2024-01-01"]}]}`,
		"duplicate": `{"version": 1, "rows": 1, "columns": [
			{"name": "a", "kind": "number", "numbers": [1]},
			{"name": "a", "kind": "number", "numbers": [2]}
		]}`,
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize([]byte(blob))
			if !errors.Is(err, ErrDeserialize) {
				t.Fatalf("Deserialize() err = %v, want ErrDeserialize", err)
			}
		})
	}
}
