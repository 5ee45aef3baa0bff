package replicas

import (
	"time"

	"github.com/google/uuid"
)

// Replica is one process instance of a horizontally scaled deployment as
// reported by the deployment API.
type Replica struct {
	ID           uuid.UUID `json:"id" table:"id"`
	Hostname     string    `json:"hostname" table:"hostname"`
	CreatedAt    time.Time `json:"created_at" table:"created at"`
	RelayAddress string    `json:"relay_address" table:"relay address"`
	RegionID     int32     `json:"region_id" table:"region"`
	Error        string    `json:"error" table:"error"`
	// DatabaseLatency is in microseconds.
	DatabaseLatency int32 `json:"database_latency" table:"db latency"`
}

// Healthy reports whether the replica itself reported no error.
func (r Replica) Healthy() bool {
	return r.Error == ""
}

// StateResponse is the payload returned by /api/v2/replicas and streamed by the watch endpoint.
type StateResponse struct {
	Status              string     `json:"status"`
	Replicas            []Replica  `json:"replicas"`
	LastError           string     `json:"lastError,omitempty"`
	LastAttempt         *time.Time `json:"lastAttempt,omitempty"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	Ready               bool       `json:"ready"`
}

// CountUnhealthy returns how many replicas report an error.
func CountUnhealthy(list []Replica) int {
	n := 0
	for _, r := range list {
		if !r.Healthy() {
			n++
		}
	}
	return n
}

// Clone returns a copy of the slice so callers cannot mutate a shared snapshot.
func Clone(list []Replica) []Replica {
	if list == nil {
		return nil
	}
	out := make([]Replica, len(list))
	copy(out, list)
	return out
}
