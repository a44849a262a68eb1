package dataset

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"restingHeartRate":        "Resting heart rate",
		"totalDistanceKilometers": "Total distance kilometers",
		"calendarDate":            "Calendar date",
		"week":                    "Week",
		"sum":                     "Sum",
		"VO2Max":                  "V o2 max",
		"":                        "",
	}

	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOptionsSkipTimeColumnsAndSort(t *testing.T) {
	tbl := sampleDataset(t)

	got := Options(tbl)
	want := []Option{
		{Label: "Active hours", Value: "activeHours"},
		{Label: "Active seconds", Value: "activeSeconds"},
		{Label: "Resting heart rate", Value: "restingHeartRate"},
		{Label: "Total distance kilometers", Value: "totalDistanceKilometers"},
		{Label: "Total distance meters", Value: "totalDistanceMeters"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Options() = %+v, want %+v", got, want)
	}
}

func TestCatalogOptions(t *testing.T) {
	groups := GroupByOptions()
	if len(groups) != 4 || groups[0] != (Option{Label: "Calendar date", Value: DateColumn}) {
		t.Fatalf("GroupByOptions() = %+v", groups)
	}

	fns := FunctionOptions()
	if len(fns) != 6 || fns[0] != (Option{Label: "Median", Value: "median"}) {
		t.Fatalf("FunctionOptions() = %+v", fns)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := sampleDataset(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV() err = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("WriteCSV() lines = %d, want 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != strings.Join(tbl.Names(), ",") {
		t.Fatalf("header = %q", lines[0])
	}
	// calendarDate,totalDistanceMeters,restingHeartRate,activeSeconds,week,month,year,totalDistanceKilometers,activeHours
	if lines[1] != "2023-12-31,4200.5,55,,2023-12-25,2023-12-01,2023,4.2005," {
		t.Fatalf("first row = %q", lines[1])
	}
}
