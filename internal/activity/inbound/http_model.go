package inbound

import (
	"net/http"

	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
)

type IngestRequest struct {
	Contents  []string `json:"contents"`
	Filenames []string `json:"filenames"`
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type IngestResponse struct {
	SessionID string   `json:"session_id"`
	Revision  int64    `json:"revision"`
	Files     int      `json:"files"`
	Rows      int      `json:"rows"`
	Columns   int      `json:"columns"`
	Options   []Option `json:"options"`
}

func (IngestResponse) StatusCode() int {
	return http.StatusCreated
}

func (IngestResponse) Message() string {
	return "dataset stored"
}

type OptionsResponse struct {
	SessionID string   `json:"session_id"`
	Revision  int64    `json:"revision"`
	Options   []Option `json:"options"`
}

type AggregateRow struct {
	Group any `json:"group"`
	Value any `json:"value"`
}

type AggregateResponse struct {
	Title      string         `json:"title"`
	Group      string         `json:"group"`
	Value      string         `json:"value"`
	Function   string         `json:"function"`
	GroupLabel string         `json:"group_label"`
	ValueLabel string         `json:"value_label"`
	Rows       []AggregateRow `json:"rows"`
	total      int
}

func (r AggregateResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
	}
}

type CatalogResponse struct {
	GroupBy   []Option `json:"group_by"`
	Functions []Option `json:"functions"`
}

func toHTTPOptions(opts []dataset.Option) []Option {
	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, Option{Label: o.Label, Value: o.Value})
	}
	return out
}

func toAggregateResponse(res *dataset.Result) AggregateResponse {
	resp := AggregateResponse{
		Title:      res.Title,
		Group:      res.Request.GroupColumn,
		Value:      res.Request.ValueColumn,
		Function:   res.Request.Function,
		GroupLabel: res.GroupLabel,
		ValueLabel: res.ValueLabel,
		Rows:       []AggregateRow{},
	}

	cols := res.Table.Columns()
	if len(cols) != 2 {
		return resp
	}

	keys, values := cols[0], cols[1]
	for i := range res.Table.Len() {
		resp.Rows = append(resp.Rows, AggregateRow{
			Group: keys.Cells[i].Value(keys.Kind),
			Value: values.Cells[i].Value(values.Kind),
		})
	}
	resp.total = len(resp.Rows)

	return resp
}
