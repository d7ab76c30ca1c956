package httpadapter

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAccessLogSkipsProbePaths(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	handler := accessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/metrics"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	if out := buf.String(); strings.Contains(out, "http_request") {
		t.Fatalf("probe traffic was logged: %s", out)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/documents", nil))
	if out := buf.String(); !strings.Contains(out, "http_request") || !strings.Contains(out, "/v1/documents") {
		t.Fatalf("portal request missing from log: %s", out)
	}
}

func TestRequestIDMiddlewarePreservesInboundID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	req.Header.Set(requestIDHeader, "req-abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-abc-123" {
		t.Fatalf("context request id = %q", seen)
	}
	if got := rec.Header().Get(requestIDHeader); got != "req-abc-123" {
		t.Fatalf("response header = %q", got)
	}
}
