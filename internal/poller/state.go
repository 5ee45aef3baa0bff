package poller

import (
	"time"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// Status is the phase of the refresh cycle.
type Status string

const (
	StatusRefreshing Status = "refreshing"
	StatusWaiting    Status = "waiting"
)

// readyFailureThreshold is the number of consecutive failures after which the poller reports not ready.
const readyFailureThreshold = 3

// FetchError records a failed fetch. It replaces the previous one and is cleared by the next success.
type FetchError struct {
	Err error
	At  time.Time
}

func (e *FetchError) Error() string {
	if e == nil || e.Err == nil {
		return "fetch replicas failed"
	}
	return "fetch replicas: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// State is a point-in-time copy of what the poller knows.
// Replicas and LastError are latched independently: a failure keeps the last replicas.
type State struct {
	Status              Status
	Replicas            []domainreplicas.Replica
	LastError           *FetchError
	LastAttempt         time.Time
	LastSuccess         time.Time
	ConsecutiveFailures int
}

// IsReady reports whether the poller has had a success and is not failing repeatedly.
func (s State) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < readyFailureThreshold
}

// Response converts the state into its JSON view.
func (s State) Response() domainreplicas.StateResponse {
	resp := domainreplicas.StateResponse{
		Status:              string(s.Status),
		Replicas:            domainreplicas.Clone(s.Replicas),
		ConsecutiveFailures: s.ConsecutiveFailures,
		Ready:               s.IsReady(),
	}
	if resp.Replicas == nil {
		resp.Replicas = []domainreplicas.Replica{}
	}
	if s.LastError != nil {
		resp.LastError = s.LastError.Error()
	}
	if !s.LastAttempt.IsZero() {
		at := s.LastAttempt
		resp.LastAttempt = &at
	}
	if !s.LastSuccess.IsZero() {
		at := s.LastSuccess
		resp.LastSuccess = &at
	}
	return resp
}

func (s State) clone() State {
	out := s
	out.Replicas = domainreplicas.Clone(s.Replicas)
	return out
}
