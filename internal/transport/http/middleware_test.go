package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LogsStatusAndPath(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/samples", nil)
	rec := httptest.NewRecorder()
	RequestLogger(handler, zap.New(core)).ServeHTTP(rec, req)

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "POST" || fields["path"] != "/samples" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Fatalf("expected status 201, got %v", fields["status"])
	}
}

func TestRequestLogger_DefaultsTo200(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	RequestLogger(handler, zap.New(core)).ServeHTTP(httptest.NewRecorder(), req)

	if got := logs.All()[0].ContextMap()["status"]; got != int64(http.StatusOK) {
		t.Fatalf("expected default status 200, got %v", got)
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recoverer(handler, zap.New(core)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pools", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if logs.FilterMessage("handler panic").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}
