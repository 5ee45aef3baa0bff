package middleware

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/replicawatch/internal/metrics"
	"github.com/preston-bernstein/replicawatch/internal/testutil"
)

func TestLoggingMiddlewareSetsRequestIDAndLogs(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	nextCalled := false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if got := RequestIDFromContext(r.Context()); got != "abc-123" {
			t.Fatalf("expected request id in context, got %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
	})

	handler := LoggingMiddleware(logger, rec, next)
	req := httptest.NewRequest(http.MethodGet, "/api/v2/replicas", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := testutil.ServeRequest(handler, req)

	if !nextCalled {
		t.Fatalf("expected next handler to be called")
	}
	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if got := rr.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	out := buf.String()
	if !strings.Contains(out, "request complete") || !strings.Contains(out, "status_code=418") {
		t.Fatalf("expected completion log, got %q", out)
	}
	if got := rec.Snapshot("http").Calls; got != 0 {
		t.Fatalf("expected no upstream metrics recorded, got %d", got)
	}
}

func TestLoggingMiddlewareGeneratesRequestIDWhenInvalid(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestIDFromContext(r.Context()); got == "" || got == "bad id" {
			t.Fatalf("expected generated request id, got %q", got)
		}
	})

	handler := LoggingMiddleware(nil, nil, next)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "bad id")
	rr := testutil.ServeRequest(handler, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get("X-Request-ID"); got == "" || got == "bad id" {
		t.Fatalf("expected sanitized X-Request-ID header, got %q", got)
	}
}

func TestLoggingMiddlewareUsesForwardedFor(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	handler := LoggingMiddleware(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	testutil.ServeRequest(handler, req)

	if !strings.Contains(buf.String(), "client_ip=198.51.100.1") {
		t.Fatalf("expected forwarded client ip in logs, got %q", buf.String())
	}
}

func TestResponseWriterDefaultsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}
	if w.status != 0 {
		t.Fatalf("expected zero status before write, got %d", w.status)
	}
	w.WriteHeader(http.StatusAccepted)
	if w.status != http.StatusAccepted {
		t.Fatalf("expected status set to 202, got %d", w.status)
	}
	if w.Unwrap() != rr {
		t.Fatalf("expected unwrap to return the inner writer")
	}
	w.Flush()
	if !rr.Flushed {
		t.Fatalf("expected flush to reach the recorder")
	}
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	conn net.Conn
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return h.conn, bufio.NewReadWriter(bufio.NewReader(h.conn), bufio.NewWriter(h.conn)), nil
}

func TestResponseWriterHijack(t *testing.T) {
	w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := w.Hijack(); err == nil {
		t.Fatalf("expected error when inner writer cannot hijack")
	}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	w = &responseWriter{ResponseWriter: &hijackableRecorder{ResponseRecorder: httptest.NewRecorder(), conn: server}}
	conn, _, err := w.Hijack()
	if err != nil || conn != server {
		t.Fatalf("expected hijacked conn, got %v %v", conn, err)
	}
	if !w.hijacked || w.status != http.StatusSwitchingProtocols {
		t.Fatalf("expected hijack to be tracked, got %+v", w)
	}
}

func TestLoggingMiddlewareLogsUpgrade(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	handler := LoggingMiddleware(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := w.(http.Hijacker).Hijack(); err != nil {
			t.Fatalf("expected hijack through middleware, got %v", err)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v2/replicas/watch", nil)
	handler.ServeHTTP(&hijackableRecorder{ResponseRecorder: httptest.NewRecorder(), conn: server}, req)

	if !strings.Contains(buf.String(), "connection upgraded") {
		t.Fatalf("expected upgrade log, got %q", buf.String())
	}
}

func TestRouteLabelUsesChiPattern(t *testing.T) {
	var label string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			label = routeLabel(req)
		})
	})
	r.Get("/api/v2/replicas/{id}", func(w http.ResponseWriter, req *http.Request) {})

	testutil.Serve(r, http.MethodGet, "/api/v2/replicas/6f1c7a52-2d0b-4b7e-9a3f-1e9d2c4b5a01", nil)
	if label != "/api/v2/replicas/{id}" {
		t.Fatalf("expected chi pattern label, got %q", label)
	}

	req := httptest.NewRequest(http.MethodGet, "/somewhere/else", nil)
	if got := routeLabel(req); got != "other" {
		t.Fatalf("expected fallback label, got %q", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "/health", want: "/health"},
		{in: "/ready", want: "/ready"},
		{in: "/api/v2/replicas", want: "/api/v2/replicas"},
		{in: "/api/v2/replicas/", want: "/api/v2/replicas"},
		{in: "/api/v2/replicas/refresh", want: "/api/v2/replicas/refresh"},
		{in: "/api/v2/replicas/watch", want: "/api/v2/replicas/watch"},
		{in: "/api/v2/replicas/123", want: "/api/v2/replicas/{id}"},
		{in: "/favicon.ico", want: "other"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Fatalf("normalizePath(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty id, got %s", got)
	}

	ctx = withRequestID(ctx, "abc123")
	if got := RequestIDFromContext(ctx); got != "abc123" {
		t.Fatalf("expected id from context, got %s", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty id for nil context, got %s", got)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rec := metrics.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Microsecond)
		w.WriteHeader(http.StatusOK)
	})

	handler := LoggingMiddleware(logger, rec, next)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v2/replicas", nil)
		handler.ServeHTTP(rr, req)
	}
}
