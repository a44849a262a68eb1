package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
	"github.com/shandysiswandi/exportviz/internal/activity/entity"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkglog"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkguid"
)

// DefaultExportFilename is the name of the merged CSV download.
const DefaultExportFilename = "merged-garmin-export-data.csv"

type Store interface {
	Save(ctx context.Context, snap entity.Snapshot) error
	Load(ctx context.Context, sessionID string) (entity.Snapshot, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store          Store
	Clock          Clock
	ID             pkguid.StringID
	Revision       pkguid.NumberID
	ExportFilename string
}

type Usecase struct {
	store          Store
	clock          Clock
	id             pkguid.StringID
	revision       pkguid.NumberID
	exportFilename string
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	filename := dep.ExportFilename
	if filename == "" {
		filename = DefaultExportFilename
	}

	return &Usecase{
		store:          dep.Store,
		clock:          clock,
		id:             dep.ID,
		revision:       dep.Revision,
		exportFilename: filename,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Ingest runs parse, merge and derive over payloads and replaces the dataset
// stored for sessionID. An empty sessionID starts a new session.
func (u *Usecase) Ingest(ctx context.Context, sessionID string, payloads []dataset.Payload) (IngestResult, error) {
	if u.store == nil || u.id == nil {
		return IngestResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if sessionID == "" {
		sessionID = u.id.Generate()
	}
	ctx = pkglog.SetSessionID(ctx, sessionID)

	results := dataset.ParseAll(payloads)
	for i, res := range results {
		if res.Err != nil {
			slog.WarnContext(ctx, "failed to parse export file", "index", i, "source", res.Source, "error", res.Err)
			continue
		}
		if len(res.Table.Columns()) == 1 {
			slog.DebugContext(ctx, "export file has no numeric columns", "index", i, "source", res.Source)
		}
	}

	merged, err := dataset.Merge(results)
	if err != nil {
		return IngestResult{}, mapPipelineErr(err)
	}

	derived, err := dataset.Derive(merged)
	if err != nil {
		return IngestResult{}, mapPipelineErr(err)
	}

	blob, err := dataset.Serialize(derived)
	if err != nil {
		return IngestResult{}, pkgerror.NewServer(err)
	}

	now := u.clock.Now()
	revision := now.UnixNano()
	if u.revision != nil {
		revision = u.revision.Generate()
	}

	snap := entity.Snapshot{
		SessionID: sessionID,
		Revision:  revision,
		Blob:      blob,
		UpdatedAt: now.Unix(),
		Files:     len(payloads),
		Rows:      derived.Len(),
		Columns:   len(derived.Columns()),
	}
	if err := u.store.Save(ctx, snap); err != nil {
		return IngestResult{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "dataset ingested", "revision", revision, "files", snap.Files, "rows", snap.Rows, "columns", snap.Columns)

	return IngestResult{
		SessionID: sessionID,
		Revision:  revision,
		Files:     snap.Files,
		Rows:      snap.Rows,
		Columns:   snap.Columns,
		Options:   dataset.Options(derived),
	}, nil
}

// Options lists the metrics of the stored dataset. It returns nil when the
// session holds no dataset yet.
func (u *Usecase) Options(ctx context.Context, sessionID string) (*OptionsResult, error) {
	tbl, snap, err := u.load(ctx, sessionID)
	if err != nil || tbl == nil {
		return nil, err
	}

	return &OptionsResult{
		SessionID: sessionID,
		Revision:  snap.Revision,
		Options:   dataset.Options(tbl),
	}, nil
}

// Aggregate answers a chart query. It returns nil while the request is
// incomplete or the session holds no dataset.
func (u *Usecase) Aggregate(ctx context.Context, sessionID string, req dataset.Request) (*dataset.Result, error) {
	if !req.Complete() {
		return nil, nil
	}

	tbl, _, err := u.load(ctx, sessionID)
	if err != nil || tbl == nil {
		return nil, err
	}

	res, err := dataset.Aggregate(tbl, req)
	if err != nil {
		return nil, mapPipelineErr(err)
	}

	return res, nil
}

// Export renders the full stored dataset as CSV. It returns nil when the
// session holds no dataset.
func (u *Usecase) Export(ctx context.Context, sessionID string) (*ExportResult, error) {
	tbl, _, err := u.load(ctx, sessionID)
	if err != nil || tbl == nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, tbl); err != nil {
		return nil, pkgerror.NewServer(err)
	}

	return &ExportResult{
		SessionID: sessionID,
		Filename:  u.exportFilename,
		Content:   buf.Bytes(),
	}, nil
}

// Catalog lists the group-by columns and aggregate functions a query accepts.
func (u *Usecase) Catalog(context.Context) CatalogResult {
	return CatalogResult{
		GroupBy:   dataset.GroupByOptions(),
		Functions: dataset.FunctionOptions(),
	}
}

func (u *Usecase) load(ctx context.Context, sessionID string) (*dataset.Table, entity.Snapshot, error) {
	if sessionID == "" {
		return nil, entity.Snapshot{}, pkgerror.NewInvalidInput(errors.New("session_id is required"))
	}
	if u.store == nil {
		return nil, entity.Snapshot{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	ctx = pkglog.SetSessionID(ctx, sessionID)

	snap, err := u.store.Load(ctx, sessionID)
	if errors.Is(err, pkgerror.ErrNotFound) {
		return nil, entity.Snapshot{}, nil
	}
	if err != nil {
		return nil, entity.Snapshot{}, normalizeErr(err)
	}

	tbl, err := dataset.Deserialize(snap.Blob)
	if err != nil {
		slog.ErrorContext(ctx, "stored dataset is unreadable", "revision", snap.Revision, "error", err)
		return nil, entity.Snapshot{}, pkgerror.NewServer(err)
	}

	return tbl, snap, nil
}

func mapPipelineErr(err error) error {
	var merr *dataset.MergeError
	if errors.As(err, &merr) {
		details := make(map[string]string, len(merr.Files))
		for _, f := range merr.Files {
			msg := f.Err.Error()
			if f.Source != "" {
				msg = f.Source + ": " + msg
			}
			details[fmt.Sprintf("file[%d]", f.Index)] = msg
		}
		return pkgerror.NewUnprocessable("some files could not be processed", err, details)
	}

	switch {
	case errors.Is(err, dataset.ErrEmptyInput):
		return pkgerror.NewUnprocessable("at least one file is required", err, nil)
	case errors.Is(err, dataset.ErrDecode),
		errors.Is(err, dataset.ErrFormat),
		errors.Is(err, dataset.ErrUnknownColumn),
		errors.Is(err, dataset.ErrUnknownFunction):
		return pkgerror.NewUnprocessable(err.Error(), err, nil)
	}

	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
