package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/preston-bernstein/replicawatch/internal/config"
	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/poller"
	"github.com/preston-bernstein/replicawatch/internal/teststubs"
	"github.com/preston-bernstein/replicawatch/internal/testutil"
)

func waitForStatus(t *testing.T, p Poller, want poller.Status) poller.State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := p.State(); st.Status == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("poller never reached status %s", want)
	return poller.State{}
}

func TestServerServesPolledReplicas(t *testing.T) {
	list := testutil.SampleReplicas(2)
	cfg := config.Config{Port: "0", PollInterval: time.Hour, Provider: "stub", AdminToken: "secret"}
	rec, _ := testutil.NewRecorderWithShutdown()
	prov := &teststubs.StubProvider{Replicas: list, Notify: make(chan struct{})}
	srv := newServerWithMetrics(cfg, nil, prov, rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.poller.Start(ctx)
	defer func() { _ = srv.poller.Stop(context.Background()) }()
	select {
	case <-prov.Notify:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected provider to be called on start")
	}
	waitForStatus(t, srv.poller, poller.StatusWaiting)

	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/api/v2/replicas", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var body domainreplicas.StateResponse
	testutil.DecodeJSON(t, rr, &body)
	if body.Status != "waiting" || len(body.Replicas) != 2 || !body.Ready {
		t.Fatalf("unexpected state response %+v", body)
	}

	rr = testutil.Serve(srv.Handler(), http.MethodGet, "/api/v2/replicas/"+list[1].ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	testutil.AssertStatus(t, testutil.Serve(srv.Handler(), http.MethodGet, "/ready", nil), http.StatusOK)
	testutil.AssertStatus(t, testutil.Serve(srv.Handler(), http.MethodGet, "/health", nil), http.StatusOK)

	if prov.Calls.Load() != 1 || rec.UpstreamCalls("stub") != 1 {
		t.Fatalf("expected instrumented provider call, got %d", rec.UpstreamCalls("stub"))
	}
}

func TestServerRefreshRequiresAdminToken(t *testing.T) {
	cfg := config.Config{Port: "0", PollInterval: time.Hour, Provider: "fixture", AdminToken: "secret"}
	srv := newServerWithMetrics(cfg, nil, testutil.GoodProvider{}, nil)

	rr := testutil.Serve(srv.Handler(), http.MethodPost, "/api/v2/replicas/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestServerReportsNotReadyOnFailure(t *testing.T) {
	cfg := config.Config{Port: "0", PollInterval: time.Hour, Provider: "stub"}
	srv := newServerWithMetrics(cfg, nil, testutil.ErrProvider{Err: errors.New("upstream down")}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.poller.Start(ctx)
	defer func() { _ = srv.poller.Stop(context.Background()) }()
	st := waitForStatus(t, srv.poller, poller.StatusWaiting)
	if st.LastError == nil {
		t.Fatalf("expected last error after failed fetch")
	}

	testutil.AssertStatus(t, testutil.Serve(srv.Handler(), http.MethodGet, "/ready", nil), http.StatusServiceUnavailable)
	if got := srv.replicas.Replicas(); len(got) != 0 {
		t.Fatalf("expected empty store after failure, got %d", len(got))
	}
}

func TestNewUsesConfiguredFixtureProvider(t *testing.T) {
	srv := New(config.Config{Port: "0", PollInterval: time.Hour, Provider: "fixture"}, nil)
	if srv.poller == nil || srv.httpServer == nil || srv.store == nil {
		t.Fatalf("expected server wiring, got %+v", srv)
	}
	if srv.logger == nil {
		t.Fatalf("expected default logger")
	}
}

func TestRunStartsAndShutsDown(t *testing.T) {
	httpSrv := &testutil.FakeHTTPServer{ServeErr: http.ErrServerClosed}
	plr := &teststubs.StubPoller{}
	logger, buf := testutil.NewBufferLogger()
	srv := newServerWithDeps(config.Config{}, logger, nil, httpSrv, plr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	if !httpSrv.WaitListening(time.Second) {
		t.Fatalf("expected http server to start")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if plr.StartCalls != 1 || plr.StopCalls != 1 {
		t.Fatalf("expected poller start/stop once, got %d/%d", plr.StartCalls, plr.StopCalls)
	}
	if httpSrv.Shutdowns() != 1 {
		t.Fatalf("expected http shutdown once, got %d", httpSrv.Shutdowns())
	}
	if buf.Len() == 0 {
		t.Fatalf("expected lifecycle logs")
	}
}

func TestRunStopsWhenServerFails(t *testing.T) {
	httpSrv := &testutil.FakeHTTPServer{ServeErr: errors.New("listen failure")}
	plr := &teststubs.StubPoller{}
	srv := newServerWithDeps(config.Config{}, nil, nil, httpSrv, plr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return after listen failure")
	}
	if plr.StopCalls != 1 {
		t.Fatalf("expected poller stop after listen failure")
	}
}

func TestGracefulShutdownLogsErrorsAndRespectsTimeout(t *testing.T) {
	orig := shutdownTimeout
	shutdownTimeout = 20 * time.Millisecond
	defer func() { shutdownTimeout = orig }()

	logger, buf := testutil.NewBufferLogger()
	httpSrv := &testutil.FakeHTTPServer{Block: make(chan struct{})}
	metricsSrv := &testutil.FakeHTTPServer{ShutdownErr: errors.New("metrics down")}
	plr := &teststubs.StubPoller{StopErr: errors.New("stop failed")}
	srv := newServerWithDeps(config.Config{}, logger, nil, httpSrv, plr)
	srv.metricsServer = metricsSrv
	srv.metricsStop = func(context.Context) error { return errors.New("exporter down") }

	start := time.Now()
	srv.gracefulShutdown()
	if time.Since(start) > time.Second {
		t.Fatalf("expected shutdown bounded by timeout")
	}
	if metricsSrv.Shutdowns() != 1 {
		t.Fatalf("expected metrics server shutdown")
	}
	for _, want := range []string{"failed to stop poller", "graceful shutdown failed", "metrics shutdown failed", "metrics server shutdown failed"} {
		if !bytesContains(buf.Bytes(), want) {
			t.Fatalf("expected log %q in %s", want, buf.String())
		}
	}
}

func TestStartMetricsLaunchesServer(t *testing.T) {
	metricsSrv := &testutil.FakeHTTPServer{ServeErr: http.ErrServerClosed}
	srv := newServerWithDeps(config.Config{}, nil, nil, &testutil.FakeHTTPServer{}, &teststubs.StubPoller{})
	srv.startMetrics()
	srv.metricsServer = metricsSrv
	srv.startMetrics()
	if !metricsSrv.WaitListening(time.Second) {
		t.Fatalf("expected metrics server to start")
	}
}
