package fixture

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// Provider returns a static set of replicas useful for local testing and bootstrapping.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now: time.Now,
	}
}

// FetchReplicas returns a deterministic set of example replicas.
func (p *Provider) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := p.now().UTC().Truncate(time.Hour)
	return []domainreplicas.Replica{
		{
			ID:              uuid.MustParse("6f1c7a52-2d0b-4b7e-9a3f-1e9d2c4b5a01"),
			Hostname:        "coder-0",
			CreatedAt:       start.Add(-2 * time.Hour),
			RelayAddress:    "http://10.0.0.10:8080",
			RegionID:        999,
			DatabaseLatency: 850,
		},
		{
			ID:              uuid.MustParse("6f1c7a52-2d0b-4b7e-9a3f-1e9d2c4b5a02"),
			Hostname:        "coder-1",
			CreatedAt:       start.Add(-time.Hour),
			RelayAddress:    "http://10.0.0.11:8080",
			RegionID:        999,
			DatabaseLatency: 1200,
		},
		{
			ID:              uuid.MustParse("6f1c7a52-2d0b-4b7e-9a3f-1e9d2c4b5a03"),
			Hostname:        "coder-2",
			CreatedAt:       start,
			RelayAddress:    "http://10.0.0.12:8080",
			RegionID:        999,
			Error:           "relay address unreachable",
			DatabaseLatency: 4100,
		},
	}, nil
}
