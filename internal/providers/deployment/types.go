package deployment

import (
	"time"

	"github.com/google/uuid"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

type replicaResponse struct {
	ID              uuid.UUID `json:"id"`
	Hostname        string    `json:"hostname"`
	CreatedAt       time.Time `json:"created_at"`
	RelayAddress    string    `json:"relay_address"`
	RegionID        int32     `json:"region_id"`
	Error           string    `json:"error"`
	DatabaseLatency int32     `json:"database_latency"`
}

// errorResponse is the error body returned by the deployment API.
type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func mapReplicas(in []replicaResponse) []domainreplicas.Replica {
	out := make([]domainreplicas.Replica, 0, len(in))
	for _, r := range in {
		out = append(out, domainreplicas.Replica{
			ID:              r.ID,
			Hostname:        r.Hostname,
			CreatedAt:       r.CreatedAt,
			RelayAddress:    r.RelayAddress,
			RegionID:        r.RegionID,
			Error:           r.Error,
			DatabaseLatency: r.DatabaseLatency,
		})
	}
	return out
}
