package inbound

import (
	"context"

	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
	"github.com/shandysiswandi/exportviz/internal/activity/usecase"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgrouter"
)

// DefaultMaxUploadBytes bounds an ingestion request body when no limit is
// configured.
const DefaultMaxUploadBytes int64 = 32 << 20

type uc interface {
	Ingest(ctx context.Context, sessionID string, payloads []dataset.Payload) (usecase.IngestResult, error)
	Options(ctx context.Context, sessionID string) (*usecase.OptionsResult, error)
	Aggregate(ctx context.Context, sessionID string, req dataset.Request) (*dataset.Result, error)
	Export(ctx context.Context, sessionID string) (*usecase.ExportResult, error)
	Catalog(ctx context.Context) usecase.CatalogResult
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUploadBytes int64) {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	end := &HTTPEndpoint{uc: uc, maxUploadBytes: maxUploadBytes}

	r.POST("/datasets", end.CreateDataset)
	r.PUT("/datasets/:session_id", end.ReplaceDataset)

	r.GET("/datasets/:session_id/options", end.Options)
	r.GET("/datasets/:session_id/aggregate", end.Aggregate) // ?value=&group=&function=
	r.GET("/datasets/:session_id/export", end.Export)

	r.GET("/catalog", end.Catalog)
}
