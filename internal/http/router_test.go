package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/replicawatch/internal/http/handlers"
	"github.com/preston-bernstein/replicawatch/internal/poller"
	"github.com/preston-bernstein/replicawatch/internal/teststubs"
	"github.com/preston-bernstein/replicawatch/internal/testutil"
)

func newTestRouter(p *teststubs.StubPoller) http.Handler {
	list := testutil.SampleReplicas(2)
	svc := testutil.NewServiceWithReplicas(list)
	return NewRouter(Routes{
		Handler: handlers.NewHandler(svc, p, nil),
		Admin:   handlers.NewAdminHandler(p, "secret", nil),
		Watch:   handlers.NewWatchHandler(p, nil),
	}, nil, nil)
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	p := &teststubs.StubPoller{StateVal: poller.State{
		Status:      poller.StatusWaiting,
		Replicas:    testutil.SampleReplicas(2),
		LastSuccess: time.Now(),
	}}
	router := newTestRouter(p)
	known := testutil.SampleReplica("replica-1").ID.String()

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/v2/replicas", http.StatusOK},
		{http.MethodGet, "/api/v2/replicas/", http.StatusOK},
		{http.MethodGet, "/api/v2/replicas/" + known, http.StatusOK},
		{http.MethodGet, "/api/v2/replicas/unhealthy", http.StatusOK},
		{http.MethodGet, "/api/v2/replicas/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/api/v2/replicas/watch", http.StatusBadRequest},
		{http.MethodPost, "/api/v2/replicas/refresh", http.StatusUnauthorized},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/replicas", http.StatusNotFound},
	}

	for _, tc := range cases {
		rr := testutil.Serve(router, tc.method, tc.path, nil)
		if rr.Code != tc.want {
			t.Fatalf("%s %s expected status %d, got %d (%s)", tc.method, tc.path, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestRouterRefreshWithToken(t *testing.T) {
	p := &teststubs.StubPoller{Trigger: true, StateVal: poller.State{Status: poller.StatusWaiting}}
	router := newTestRouter(p)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/replicas/refresh", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := testutil.ServeRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusAccepted)
	if p.RefreshCalls != 1 {
		t.Fatalf("expected refresh to reach the poller")
	}
}

func TestRouterUnknownRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter(&teststubs.StubPoller{})

	rr := testutil.Serve(router, http.MethodGet, "/unknown", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	if !strings.Contains(rr.Body.String(), `"error":"not found"`) {
		t.Fatalf("expected json error body, got %s", rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected middleware to run for unknown routes")
	}
}

func TestRouterOmitsOptionalRoutes(t *testing.T) {
	p := &teststubs.StubPoller{}
	router := NewRouter(Routes{Handler: handlers.NewHandler(testutil.NewServiceWithReplicas(nil), p, nil)}, nil, nil)

	rr := testutil.Serve(router, http.MethodPost, "/api/v2/replicas/refresh", nil)
	if rr.Code == http.StatusAccepted || rr.Code == http.StatusOK {
		t.Fatalf("expected refresh to be unavailable without admin handler, got %d", rr.Code)
	}
}
