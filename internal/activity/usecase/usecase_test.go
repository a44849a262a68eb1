package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
	"github.com/shandysiswandi/exportviz/internal/activity/entity"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
)

const (
	distanceExport = `[
		{"calendarDate": "2024-01-02", "totalDistanceMeters": 5000, "activeSeconds": 3600},
		{"calendarDate": "2024-01-01", "totalDistanceMeters": 1000, "activeSeconds": null}
	]`
	heartExport = `[{"calendarDate": "2025-03-04", "restingHeartRate": 50, "note": "easy"}]`
)

type testStore struct {
	mu      sync.RWMutex
	snaps   map[string]entity.Snapshot
	saveErr error
	loadErr error
}

func newTestStore() *testStore {
	return &testStore{snaps: make(map[string]entity.Snapshot)}
}

func (s *testStore) Save(ctx context.Context, snap entity.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.SessionID] = snap
	return nil
}

func (s *testStore) Load(ctx context.Context, sessionID string) (entity.Snapshot, error) {
	if s.loadErr != nil {
		return entity.Snapshot{}, s.loadErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return entity.Snapshot{}, pkgerror.ErrNotFound
	}
	return snap, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type counter struct{ n int64 }

func (c *counter) Generate() int64 {
	c.n++
	return c.n
}

func newTestUsecase(store Store) *Usecase {
	return New(Dependency{
		Store:    store,
		Clock:    fixedClock{now: time.Unix(1_700_000_000, 0)},
		ID:       fixedID("session-1"),
		Revision: &counter{},
	})
}

func payload(name, content string) dataset.Payload {
	return dataset.Payload{
		Name:     name,
		Encoding: dataset.EncodingDataURL,
		Data:     []byte("data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(content))),
	}
}

func ingestSample(t *testing.T, uc *Usecase) IngestResult {
	t.Helper()
	res, err := uc.Ingest(context.Background(), "", []dataset.Payload{
		payload("distance.json", distanceExport),
		payload("heart.json", heartExport),
	})
	if err != nil {
		t.Fatalf("Ingest() err = %v", err)
	}
	return res
}

func TestIngest_StoresDerivedDataset(t *testing.T) {
	store := newTestStore()
	uc := newTestUsecase(store)

	res := ingestSample(t, uc)

	if res.SessionID != "session-1" || res.Revision != 1 {
		t.Fatalf("Ingest() = %+v, want generated session and revision", res)
	}
	if res.Files != 2 || res.Rows != 3 || res.Columns != 9 {
		t.Fatalf("Ingest() counts = files %d rows %d columns %d", res.Files, res.Rows, res.Columns)
	}

	var values []string
	for _, o := range res.Options {
		values = append(values, o.Value)
	}
	want := "activeHours,activeSeconds,restingHeartRate,totalDistanceKilometers,totalDistanceMeters"
	if got := strings.Join(values, ","); got != want {
		t.Fatalf("Ingest() options = %s, want %s", got, want)
	}

	snap := store.snaps["session-1"]
	if snap.UpdatedAt != 1_700_000_000 {
		t.Fatalf("snapshot UpdatedAt = %d", snap.UpdatedAt)
	}
	tbl, err := dataset.Deserialize(snap.Blob)
	if err != nil || tbl == nil {
		t.Fatalf("stored blob unreadable: %v", err)
	}
	dates, _ := tbl.Column(dataset.DateColumn)
	if got := dates.Cells[0].Date.Format(dataset.DateLayout); got != "2024-01-01" {
		t.Fatalf("first stored date = %s, want rows sorted by date", got)
	}
}

func TestIngest_ReplacesExistingSession(t *testing.T) {
	store := newTestStore()
	uc := newTestUsecase(store)
	ingestSample(t, uc)

	res, err := uc.Ingest(context.Background(), "session-1", []dataset.Payload{payload("heart.json", heartExport)})
	if err != nil {
		t.Fatalf("Ingest() err = %v", err)
	}
	if res.Revision != 2 || res.Rows != 1 {
		t.Fatalf("Ingest() = %+v, want replaced dataset at revision 2", res)
	}

	opts, err := uc.Options(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Options() err = %v", err)
	}
	if len(opts.Options) != 1 || opts.Options[0].Value != "restingHeartRate" {
		t.Fatalf("Options() = %+v, want only the new file's metric", opts.Options)
	}
}

func TestIngest_ReportsEveryBadFile(t *testing.T) {
	store := newTestStore()
	uc := newTestUsecase(store)

	_, err := uc.Ingest(context.Background(), "", []dataset.Payload{
		payload("good.json", heartExport),
		{Name: "broken.json", Encoding: dataset.EncodingDataURL, Data: []byte("no marker here")},
		payload("object.json", `{"calendarDate": "2024-01-01"}`),
	})

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Ingest() err = %v, want pkgerror.Error", err)
	}
	if perr.StatusCode() != 422 {
		t.Fatalf("Ingest() status = %d, want 422", perr.StatusCode())
	}
	details := perr.Details()
	if len(details) != 2 || !strings.HasPrefix(details["file[1]"], "broken.json: ") || details["file[2]"] == "" {
		t.Fatalf("Ingest() details = %v", details)
	}
	if !errors.Is(err, dataset.ErrMerge) || !errors.Is(err, dataset.ErrDecode) || !errors.Is(err, dataset.ErrFormat) {
		t.Fatalf("Ingest() err chain lost causes: %v", err)
	}
	if len(store.snaps) != 0 {
		t.Fatalf("expected nothing stored on failure")
	}
}

func TestIngest_EmptyInput(t *testing.T) {
	_, err := newTestUsecase(newTestStore()).Ingest(context.Background(), "", nil)

	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.StatusCode() != 422 || !errors.Is(err, dataset.ErrEmptyInput) {
		t.Fatalf("Ingest() err = %v, want 422 empty input", err)
	}
}

func TestIngest_StoreFailure(t *testing.T) {
	store := newTestStore()
	store.saveErr = errors.New("disk full")

	_, err := newTestUsecase(store).Ingest(context.Background(), "", []dataset.Payload{payload("heart.json", heartExport)})

	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Type() != pkgerror.TypeServer {
		t.Fatalf("Ingest() err = %v, want server error", err)
	}
}

func TestAggregate_SumByYear(t *testing.T) {
	uc := newTestUsecase(newTestStore())
	ingestSample(t, uc)

	res, err := uc.Aggregate(context.Background(), "session-1", dataset.Request{
		GroupColumn: dataset.YearColumn,
		ValueColumn: "totalDistanceKilometers",
		Function:    "sum",
	})
	if err != nil {
		t.Fatalf("Aggregate() err = %v", err)
	}
	if res.Title != "Sum of Total distance kilometers by year" {
		t.Fatalf("Aggregate() title = %q", res.Title)
	}

	cols := res.Table.Columns()
	if res.Table.Len() != 2 || cols[0].Cells[0].Text != "2024" || cols[0].Cells[1].Text != "2025" {
		t.Fatalf("Aggregate() groups = %+v", cols[0].Cells)
	}
	if cols[1].Cells[0].Num != 6 || cols[1].Cells[1].Null || cols[1].Cells[1].Num != 0 {
		t.Fatalf("Aggregate() values = %+v", cols[1].Cells)
	}
}

func TestAggregate_NoResult(t *testing.T) {
	uc := newTestUsecase(newTestStore())

	res, err := uc.Aggregate(context.Background(), "session-1", dataset.Request{GroupColumn: "year", Function: "sum"})
	if err != nil || res != nil {
		t.Fatalf("Aggregate(incomplete) = %v, %v, want nil, nil", res, err)
	}

	res, err = uc.Aggregate(context.Background(), "session-1", dataset.Request{GroupColumn: "year", ValueColumn: "x", Function: "sum"})
	if err != nil || res != nil {
		t.Fatalf("Aggregate(no dataset) = %v, %v, want nil, nil", res, err)
	}
}

func TestAggregate_InvalidQuery(t *testing.T) {
	uc := newTestUsecase(newTestStore())
	ingestSample(t, uc)

	cases := []struct {
		name string
		req  dataset.Request
		want error
	}{
		{"unknown column", dataset.Request{GroupColumn: "year", ValueColumn: "vo2Max", Function: "sum"}, dataset.ErrUnknownColumn},
		{"unknown function", dataset.Request{GroupColumn: "year", ValueColumn: "activeHours", Function: "mode"}, dataset.ErrUnknownFunction},
		{"text value", dataset.Request{GroupColumn: "week", ValueColumn: "year", Function: "mean"}, dataset.ErrUnknownColumn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Aggregate(context.Background(), "session-1", tc.req)

			var perr *pkgerror.Error
			if !errors.As(err, &perr) || perr.StatusCode() != 422 || !errors.Is(err, tc.want) {
				t.Fatalf("Aggregate() err = %v, want 422 wrapping %v", err, tc.want)
			}
		})
	}
}

func TestOptionsAndExport_NoDataset(t *testing.T) {
	uc := newTestUsecase(newTestStore())

	opts, err := uc.Options(context.Background(), "session-1")
	if err != nil || opts != nil {
		t.Fatalf("Options() = %v, %v, want nil, nil", opts, err)
	}

	exp, err := uc.Export(context.Background(), "session-1")
	if err != nil || exp != nil {
		t.Fatalf("Export() = %v, %v, want nil, nil", exp, err)
	}
}

func TestLoad_CorruptBlob(t *testing.T) {
	store := newTestStore()
	store.snaps["session-1"] = entity.Snapshot{SessionID: "session-1", Blob: []byte(`{"version": 99}`)}

	_, err := newTestUsecase(store).Options(context.Background(), "session-1")

	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Type() != pkgerror.TypeServer || !errors.Is(err, dataset.ErrDeserialize) {
		t.Fatalf("Options() err = %v, want server error wrapping ErrDeserialize", err)
	}
}

func TestLoad_ExpiredSessionHasNoDataset(t *testing.T) {
	store := newTestStore()
	store.loadErr = pkgerror.ErrExpired

	opts, err := newTestUsecase(store).Options(context.Background(), "session-1")
	if err != nil || opts != nil {
		t.Fatalf("Options() = %v, %v, want nil, nil", opts, err)
	}
}

func TestLoad_RequiresSessionID(t *testing.T) {
	_, err := newTestUsecase(newTestStore()).Export(context.Background(), "")

	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Code() != pkgerror.CodeInvalidInput {
		t.Fatalf("Export() err = %v, want invalid input", err)
	}
}

func TestExport_CSV(t *testing.T) {
	uc := New(Dependency{Store: newTestStore(), ID: fixedID("session-1"), ExportFilename: "mine.csv"})
	ingestSample(t, uc)

	res, err := uc.Export(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Export() err = %v", err)
	}
	if res.Filename != "mine.csv" {
		t.Fatalf("Export() filename = %q", res.Filename)
	}

	lines := strings.Split(strings.TrimSpace(string(res.Content)), "\n")
	if len(lines) != 4 {
		t.Fatalf("Export() lines = %d, want header plus 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "calendarDate,") || !strings.HasPrefix(lines[1], "2024-01-01,") {
		t.Fatalf("Export() content = %q", res.Content)
	}
}

func TestCatalog(t *testing.T) {
	res := newTestUsecase(nil).Catalog(context.Background())

	if len(res.GroupBy) != 4 || res.GroupBy[0].Value != dataset.DateColumn {
		t.Fatalf("Catalog() group by = %+v", res.GroupBy)
	}
	if len(res.Functions) != 6 || res.Functions[0].Value != "median" {
		t.Fatalf("Catalog() functions = %+v", res.Functions)
	}
}

func TestNew_Defaults(t *testing.T) {
	uc := New(Dependency{})
	if uc.exportFilename != DefaultExportFilename {
		t.Fatalf("exportFilename = %q", uc.exportFilename)
	}

	_, err := uc.Ingest(context.Background(), "", nil)
	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Type() != pkgerror.TypeServer {
		t.Fatalf("Ingest() without store err = %v, want server error", err)
	}
}
