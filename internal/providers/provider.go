package providers

import (
	"context"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// ReplicaProvider fetches the current replica list of a deployment.
// Implementations return the list in the order reported upstream and fail
// with a transport or decoding error.
type ReplicaProvider interface {
	FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error)
}

// ProviderFunc adapts a function to ReplicaProvider.
type ProviderFunc func(ctx context.Context) ([]domainreplicas.Replica, error)

// FetchReplicas calls f.
func (f ProviderFunc) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	return f(ctx)
}
