package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/poller"
)

// StubProvider is a test double for providers.ReplicaProvider.
type StubProvider struct {
	Replicas []domainreplicas.Replica
	Err      error
	Calls    atomic.Int32
	Notify   chan struct{}
}

// FetchReplicas returns configured replicas and error while tracking calls.
func (s *StubProvider) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Replicas, s.Err
}

// StubPoller is a test double for the replica poller as seen by the server and HTTP handlers.
type StubPoller struct {
	mu sync.Mutex

	StateVal     poller.State
	Trigger      bool
	StartCalls   int
	StopCalls    int
	RefreshCalls int
	StopErr      error

	subs         []chan poller.State
	Unsubscribed int
}

func (p *StubPoller) Start(ctx context.Context) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls++
}

// Stop closes every open subscription.
func (p *StubPoller) Stop(ctx context.Context) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StopCalls++
	for _, ch := range p.subs {
		close(ch)
	}
	p.subs = nil
	return p.StopErr
}

func (p *StubPoller) State() poller.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.StateVal
}

// RequestRefresh flips StateVal to refreshing when Trigger is set.
func (p *StubPoller) RequestRefresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RefreshCalls++
	if p.Trigger {
		p.StateVal.Status = poller.StatusRefreshing
	}
	return p.Trigger
}

// Subscribe delivers StateVal immediately, then whatever Publish sends.
func (p *StubPoller) Subscribe() (<-chan poller.State, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan poller.State, 8)
	ch <- p.StateVal
	p.subs = append(p.subs, ch)
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.Unsubscribed++
		for i, sub := range p.subs {
			if sub == ch {
				close(sub)
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish stores s and sends it to every subscriber.
func (p *StubPoller) Publish(s poller.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StateVal = s
	for _, ch := range p.subs {
		ch <- s
	}
}

// Subscribers reports the number of open subscriptions.
func (p *StubPoller) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
