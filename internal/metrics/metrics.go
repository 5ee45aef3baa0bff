package metrics

import (
	"sync"
	"time"
)

type upstreamStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about upstream calls and the
// poller, and forwards them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*upstreamStats

	pollerCycles   int
	pollerErrors   int
	manualRefresh  int
	replicas       int
	unhealthy      int
	lastCycleSpent time.Duration

	otel *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*upstreamStats),
		otel:  otel,
	}
}

// RecordUpstreamAttempt increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordUpstreamAttempt(upstream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(upstream)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordUpstreamAttempt(upstream, duration, err)
	}
}

// RecordRateLimit tracks that an upstream response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(upstream string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(upstream)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(upstream, retryAfter)
	}
}

// RecordPollerCycle tracks completed poller fetch cycles and their errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.pollerCycles++
	r.lastCycleSpent = duration
	if err != nil {
		r.pollerErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoller(duration, err)
	}
}

// RecordReplicas stores the size and health of the latest replica snapshot.
func (r *Recorder) RecordReplicas(total, unhealthy int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.replicas = total
	r.unhealthy = unhealthy
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.setReplicas(total, unhealthy)
	}
}

// RecordManualRefresh counts refresh requests and whether they started a fetch.
func (r *Recorder) RecordManualRefresh(triggered bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if triggered {
		r.manualRefresh++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordManualRefresh(triggered)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// UpstreamCalls returns the total attempts recorded for an upstream.
func (r *Recorder) UpstreamCalls(upstream string) int {
	return r.Snapshot(upstream).Calls
}

// UpstreamErrors returns the total failed attempts recorded for an upstream.
func (r *Recorder) UpstreamErrors(upstream string) int {
	return r.Snapshot(upstream).Errors
}

// RateLimitHits returns the number of rate limit events seen for an upstream.
func (r *Recorder) RateLimitHits(upstream string) int {
	return r.Snapshot(upstream).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for an upstream.
func (r *Recorder) LastRetryAfter(upstream string) time.Duration {
	return r.Snapshot(upstream).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for an upstream call.
func (r *Recorder) LastCallLatency(upstream string) time.Duration {
	return r.Snapshot(upstream).LastCallLatency
}

// Snapshot is a copy of the current stats for an upstream.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(upstream string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[upstream]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// PollerStats summarizes poller activity.
type PollerStats struct {
	Cycles         int
	Errors         int
	ManualRefresh  int
	Replicas       int
	Unhealthy      int
	LastCycleSpent time.Duration
}

// Poller returns a copy of the poller counters.
func (r *Recorder) Poller() PollerStats {
	if r == nil {
		return PollerStats{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return PollerStats{
		Cycles:         r.pollerCycles,
		Errors:         r.pollerErrors,
		ManualRefresh:  r.manualRefresh,
		Replicas:       r.replicas,
		Unhealthy:      r.unhealthy,
		LastCycleSpent: r.lastCycleSpent,
	}
}

func (r *Recorder) ensureStatsLocked(upstream string) *upstreamStats {
	stats, ok := r.stats[upstream]
	if !ok {
		stats = &upstreamStats{}
		r.stats[upstream] = stats
	}
	return stats
}
