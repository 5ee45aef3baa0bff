package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/metrics"
	"github.com/preston-bernstein/replicawatch/internal/providers"
)

const (
	defaultInterval  = 5 * time.Second
	subscriberBuffer = 8
)

// Sink receives every successfully fetched replica list.
type Sink interface {
	ReplaceReplicas(list []domainreplicas.Replica)
}

// Poller keeps the latest replica list of a deployment fresh.
//
// It alternates between Refreshing (one fetch in flight) and Waiting (one timer
// pending). Every fetch and timer is tagged with a generation; callbacks from an
// older generation, or arriving after Stop, change nothing.
type Poller struct {
	provider  providers.ReplicaProvider
	sink      Sink
	logger    *slog.Logger
	metrics   *metrics.Recorder
	interval  time.Duration
	afterFunc AfterFunc
	now       func() time.Time

	mu          sync.Mutex
	state       State
	gen         uint64
	timer       Timer
	cancelFetch context.CancelFunc
	// runCtx carries the Start ctx values but is only cancelled by Stop.
	parent      context.Context
	runCtx      context.Context
	cancelRun   context.CancelFunc
	started     bool
	stopped     bool
	subs        map[uint64]chan State
	nextSubID   uint64

	fetches  sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// New constructs a Poller. A non-positive interval falls back to five seconds.
func New(provider providers.ReplicaProvider, sink Sink, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		provider:  provider,
		sink:      sink,
		logger:    logger,
		metrics:   recorder,
		interval:  interval,
		afterFunc: realAfterFunc,
		now:       time.Now,
		state:     State{Status: StatusRefreshing, Replicas: []domainreplicas.Replica{}},
		subs:      make(map[uint64]chan State),
		done:      make(chan struct{}),
	}
}

// Start issues the first fetch immediately. Cancelling ctx stops the poller.
// Calling Start again, or after Stop, does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.parent = ctx
	p.runCtx, p.cancelRun = context.WithCancel(context.WithoutCancel(ctx))
	p.beginRefreshLocked()
	p.mu.Unlock()

	p.logInfo("poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))

	go func() {
		select {
		case <-ctx.Done():
			_ = p.Stop(context.Background())
		case <-p.done:
		}
	}()
}

// RequestRefresh starts a fetch right away when the poller is Waiting.
// The status is Refreshing by the time it returns true. While a fetch is
// already in flight, or when the poller is not running, it returns false.
func (p *Poller) RequestRefresh() bool {
	p.mu.Lock()
	triggered := p.started && !p.haltedLocked() && p.state.Status == StatusWaiting
	if triggered {
		p.stopTimerLocked()
		p.beginRefreshLocked()
	}
	p.mu.Unlock()

	p.metrics.RecordManualRefresh(triggered)
	if triggered {
		p.logInfo("manual refresh triggered")
	}
	return triggered
}

// Stop cancels the pending timer and the in-flight fetch, closes all
// subscriptions, then waits for the fetch to unwind or ctx to end.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.gen++
		p.stopTimerLocked()
		if p.cancelFetch != nil {
			p.cancelFetch()
			p.cancelFetch = nil
		}
		if p.cancelRun != nil {
			p.cancelRun()
		}
		for id, ch := range p.subs {
			close(ch)
			delete(p.subs, id)
		}
		p.mu.Unlock()
		close(p.done)
		p.logInfo("poller stopped")
	})

	if ctx == nil {
		return nil
	}
	unwound := make(chan struct{})
	go func() {
		p.fetches.Wait()
		close(unwound)
	}()
	select {
	case <-unwound:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the current poll state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Subscribe returns a channel that receives the state after every transition.
// A running poller delivers its current state first. Slow readers lose the
// oldest undelivered states. The channel is closed by unsubscribe or Stop.
func (p *Poller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSubID
	p.nextSubID++
	p.subs[id] = ch
	if p.started {
		ch <- p.state.clone()
	}

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			close(sub)
			delete(p.subs, id)
		}
	}
}

func (p *Poller) beginRefreshLocked() {
	p.gen++
	gen := p.gen
	p.state.Status = StatusRefreshing
	p.state.LastAttempt = p.now()

	ctx, cancel := context.WithCancel(p.runCtx)
	p.cancelFetch = cancel
	p.publishLocked()

	p.fetches.Add(1)
	go func() {
		defer p.fetches.Done()
		p.fetch(ctx, gen)
	}()
}

func (p *Poller) fetch(ctx context.Context, gen uint64) {
	start := p.now()
	var (
		replicas []domainreplicas.Replica
		err      error
	)
	if p.provider == nil {
		err = providers.ErrProviderUnavailable
	} else {
		replicas, err = p.provider.FetchReplicas(ctx)
	}
	p.complete(gen, start, replicas, err)
}

func (p *Poller) complete(gen uint64, start time.Time, replicas []domainreplicas.Replica, err error) {
	p.mu.Lock()
	if p.haltedLocked() || gen != p.gen {
		p.mu.Unlock()
		p.logDebug("discarding stale fetch result")
		return
	}
	if p.cancelFetch != nil {
		p.cancelFetch()
		p.cancelFetch = nil
	}

	finished := p.now()
	var total, unhealthy int
	if err != nil {
		p.state.LastError = &FetchError{Err: err, At: finished}
		p.state.ConsecutiveFailures++
	} else {
		fresh := domainreplicas.Clone(replicas)
		if fresh == nil {
			fresh = []domainreplicas.Replica{}
		}
		p.state.Replicas = fresh
		p.state.LastError = nil
		p.state.ConsecutiveFailures = 0
		p.state.LastSuccess = finished
		total, unhealthy = len(fresh), domainreplicas.CountUnhealthy(fresh)
		if p.sink != nil {
			p.sink.ReplaceReplicas(domainreplicas.Clone(fresh))
		}
	}
	p.state.Status = StatusWaiting
	p.scheduleLocked(gen)
	p.publishLocked()
	failures := p.state.ConsecutiveFailures
	p.mu.Unlock()

	elapsed := finished.Sub(start)
	p.metrics.RecordPollerCycle(elapsed, err)
	if err != nil {
		p.logError("poller fetch failed", err,
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
			slog.Int("consecutive_failures", failures),
		)
		return
	}
	p.metrics.RecordReplicas(total, unhealthy)
	p.logInfo("poller refreshed replicas",
		slog.Int(logging.FieldCount, total),
		slog.Int(logging.FieldUnhealthy, unhealthy),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
}

func (p *Poller) scheduleLocked(gen uint64) {
	p.timer = p.afterFunc(p.interval, func() {
		p.onTimer(gen)
	})
}

func (p *Poller) onTimer(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.haltedLocked() || gen != p.gen || p.state.Status != StatusWaiting {
		return
	}
	p.timer = nil
	p.beginRefreshLocked()
}

// haltedLocked reports whether Stop ran or the Start ctx is already done.
// The watcher that turns ctx cancellation into Stop may not have run yet.
func (p *Poller) haltedLocked() bool {
	return p.stopped || (p.parent != nil && p.parent.Err() != nil)
}

func (p *Poller) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// publishLocked fans the current state out to subscribers without blocking.
func (p *Poller) publishLocked() {
	if len(p.subs) == 0 {
		return
	}
	snapshot := p.state.clone()
	for _, ch := range p.subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (p *Poller) logInfo(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Poller) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Poller) logError(msg string, err error, attrs ...any) {
	if p.logger != nil {
		p.logger.Error(msg, append(attrs, "error", err)...)
	}
}
