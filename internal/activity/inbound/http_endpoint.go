package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkglog"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkguid"
)

type HTTPEndpoint struct {
	uc             uc
	maxUploadBytes int64
}

func (h *HTTPEndpoint) CreateDataset(ctx context.Context, r *http.Request) (any, error) {
	return h.ingest(ctx, r, "")
}

func (h *HTTPEndpoint) ReplaceDataset(ctx context.Context, r *http.Request) (any, error) {
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return nil, err
	}

	return h.ingest(pkglog.SetSessionID(ctx, sessionID), r, sessionID)
}

func (h *HTTPEndpoint) Options(ctx context.Context, r *http.Request) (any, error) {
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Options(pkglog.SetSessionID(ctx, sessionID), sessionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	return OptionsResponse{
		SessionID: result.SessionID,
		Revision:  result.Revision,
		Options:   toHTTPOptions(result.Options),
	}, nil
}

func (h *HTTPEndpoint) Aggregate(ctx context.Context, r *http.Request) (any, error) {
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return nil, err
	}

	req := dataset.Request{
		GroupColumn: pkgrouter.GetQuery(r, "group"),
		ValueColumn: pkgrouter.GetQuery(r, "value"),
		Function:    strings.ToLower(pkgrouter.GetQuery(r, "function")),
	}

	result, err := h.uc.Aggregate(pkglog.SetSessionID(ctx, sessionID), sessionID, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	return toAggregateResponse(result), nil
}

func (h *HTTPEndpoint) Export(ctx context.Context, r *http.Request) (any, error) {
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Export(pkglog.SetSessionID(ctx, sessionID), sessionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	return &pkgrouter.File{
		Name:        result.Filename,
		ContentType: "text/csv; charset=utf-8",
		Body:        result.Content,
	}, nil
}

func (h *HTTPEndpoint) Catalog(ctx context.Context, r *http.Request) (any, error) {
	result := h.uc.Catalog(ctx)

	return CatalogResponse{
		GroupBy:   toHTTPOptions(result.GroupBy),
		Functions: toHTTPOptions(result.Functions),
	}, nil
}

func (h *HTTPEndpoint) ingest(ctx context.Context, r *http.Request, sessionID string) (any, error) {
	payloads, err := h.readPayloads(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Ingest(ctx, sessionID, payloads)
	if err != nil {
		return nil, err
	}

	return IngestResponse{
		SessionID: result.SessionID,
		Revision:  result.Revision,
		Files:     result.Files,
		Rows:      result.Rows,
		Columns:   result.Columns,
		Options:   toHTTPOptions(result.Options),
	}, nil
}

func sessionParam(ctx context.Context) (string, error) {
	sessionID := strings.TrimSpace(pkgrouter.GetParam(ctx, "session_id"))
	if sessionID == "" {
		return "", pkgerror.NewInvalidInput(errors.New("session_id is required"))
	}
	if !pkguid.IsUUID(sessionID) {
		return "", pkgerror.NewInvalidInput(errors.New("session_id must be a uuid"))
	}

	return sessionID, nil
}

// readPayloads accepts a JSON body of data URLs or a multipart form with one
// or more "file" parts.
func (h *HTTPEndpoint) readPayloads(r *http.Request) ([]dataset.Payload, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, pkgerror.NewInvalidFormat()
		}
		mediaType = strings.ToLower(parsed)
	}

	switch mediaType {
	case "multipart/form-data":
		return h.readMultipart(r)
	case "application/json":
		return h.readDataURLs(r)
	default:
		return nil, pkgerror.NewInvalidFormat()
	}
}

func (h *HTTPEndpoint) readDataURLs(r *http.Request) ([]dataset.Payload, error) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, h.bodyErr(err)
	}

	payloads := make([]dataset.Payload, 0, len(req.Contents))
	for i, content := range req.Contents {
		var name string
		if i < len(req.Filenames) {
			name = req.Filenames[i]
		}
		payloads = append(payloads, dataset.Payload{
			Name:     name,
			Encoding: dataset.EncodingDataURL,
			Data:     []byte(content),
		})
	}

	return payloads, nil
}

func (h *HTTPEndpoint) readMultipart(r *http.Request) ([]dataset.Payload, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	var payloads []dataset.Payload
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return payloads, nil
		}
		if err != nil {
			return nil, h.bodyErr(err)
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, h.bodyErr(err)
		}

		payloads = append(payloads, dataset.Payload{
			Name:     part.FileName(),
			Encoding: dataset.EncodingRaw,
			Data:     data,
		})
	}
}

func (h *HTTPEndpoint) bodyErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerror.NewTooLarge(tooLarge.Limit)
	}
	return pkgerror.NewInvalidFormat()
}
