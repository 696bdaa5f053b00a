package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromContextFallsBack(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("expected a fallback logger")
	}
	if logger.Component() != ComponentApp {
		t.Errorf("expected fallback component %q, got %q", ComponentApp, logger.Component())
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger := New(DefaultConfig())

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != logger {
		t.Error("handler should receive the middleware's logger from the context")
	}
}

func TestRequestIDMiddlewareStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelInfo,
		Component: ComponentHTTP,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("Handled")
	})
	chain := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string {
		return "req_fixed"
	})(inner))
	chain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	if !strings.Contains(out, "req_fixed") {
		t.Errorf("expected the request id on the record, got %q", out)
	}
}
