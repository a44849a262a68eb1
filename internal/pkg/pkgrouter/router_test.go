package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
)

type createdResponse struct {
	ID string `json:"id"`
}

func (createdResponse) StatusCode() int { return http.StatusCreated }
func (createdResponse) Message() string { return "created" }

func serve(t *testing.T, ro *Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	return rec
}

func TestRouterPingAndHealth(t *testing.T) {
	ro := NewRouter(&staticGenerator{value: "cid"})

	rec := serve(t, ro, http.MethodGet, "/ping")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "cid" {
		t.Fatalf("expected correlation id header, got %q", got)
	}

	rec = serve(t, ro, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, ro, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouterEncodesResponses(t *testing.T) {
	ro := NewRouter(nil)
	ro.POST("/created", func(context.Context, *http.Request) (any, error) {
		return createdResponse{ID: "a1"}, nil
	})
	ro.GET("/empty", func(context.Context, *http.Request) (any, error) {
		return nil, nil
	})
	ro.GET("/file", func(context.Context, *http.Request) (any, error) {
		return &File{Name: "out.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
	})

	rec := serve(t, ro, http.MethodPost, "/created")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Message string          `json:"message"`
		Data    createdResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "created" || body.Data.ID != "a1" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = serve(t, ro, http.MethodGet, "/empty")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}

	rec = serve(t, ro, http.MethodGet, "/file")
	if rec.Code != http.StatusOK || rec.Body.String() != "a,b\n" {
		t.Fatalf("unexpected file response: %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=out.csv` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestRouterEncodesErrors(t *testing.T) {
	ro := NewRouter(nil)
	ro.GET("/unprocessable", func(context.Context, *http.Request) (any, error) {
		return nil, pkgerror.NewUnprocessable("bad files", errors.New("x"), map[string]string{"file[1]": "not json"})
	})
	ro.GET("/plain", func(context.Context, *http.Request) (any, error) {
		return nil, errors.New("boom")
	})
	ro.GET("/panic", func(context.Context, *http.Request) (any, error) {
		panic("kaboom")
	})

	rec := serve(t, ro, http.MethodGet, "/unprocessable")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "bad files" || body.Error["file[1]"] != "not json" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	rec = serve(t, ro, http.MethodGet, "/plain")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	rec = serve(t, ro, http.MethodGet, "/panic")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}
