package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksUpstreamAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordUpstreamAttempt("deployment", 10*time.Millisecond, nil)
	rec.RecordUpstreamAttempt("deployment", 15*time.Millisecond, errors.New("boom"))

	if got := rec.UpstreamCalls("deployment"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.UpstreamErrors("deployment"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastCallLatency("deployment"); got != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", got)
	}

	snap := rec.Snapshot("deployment")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if got := rec.Snapshot("unknown"); got != (Snapshot{}) {
		t.Fatalf("expected empty snapshot for unknown upstream, got %+v", got)
	}
}

func TestRecorderTracksRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("deployment", 5*time.Second)
	rec.RecordRateLimit("deployment", 0)

	if got := rec.RateLimitHits("deployment"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
	if got := rec.LastRetryAfter("deployment"); got != 5*time.Second {
		t.Fatalf("expected last retry-after to be 5s, got %s", got)
	}
}

func TestRecorderTracksPollerActivity(t *testing.T) {
	rec := NewRecorder()
	rec.RecordPollerCycle(time.Millisecond, nil)
	rec.RecordPollerCycle(2*time.Millisecond, errors.New("timeout"))
	rec.RecordReplicas(3, 1)
	rec.RecordManualRefresh(true)
	rec.RecordManualRefresh(false)

	stats := rec.Poller()
	if stats.Cycles != 2 || stats.Errors != 1 {
		t.Fatalf("unexpected cycle counts %+v", stats)
	}
	if stats.Replicas != 3 || stats.Unhealthy != 1 {
		t.Fatalf("unexpected replica gauges %+v", stats)
	}
	if stats.ManualRefresh != 1 {
		t.Fatalf("expected only triggered refreshes counted, got %d", stats.ManualRefresh)
	}
	if stats.LastCycleSpent != 2*time.Millisecond {
		t.Fatalf("expected last cycle duration 2ms, got %s", stats.LastCycleSpent)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordUpstreamAttempt("x", time.Millisecond, nil)
	rec.RecordRateLimit("x", time.Second)
	rec.RecordPollerCycle(time.Millisecond, nil)
	rec.RecordReplicas(1, 0)
	rec.RecordManualRefresh(true)
	rec.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	if rec.Poller() != (PollerStats{}) || rec.Snapshot("x") != (Snapshot{}) {
		t.Fatalf("expected zero values from nil recorder")
	}
}
