package testutil

import (
	"context"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// GoodProvider returns the provided replicas with no error.
type GoodProvider struct {
	Replicas []domainreplicas.Replica
}

func (p GoodProvider) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	_ = ctx
	return p.Replicas, nil
}

// ErrProvider always returns the provided error.
type ErrProvider struct {
	Err error
}

func (p ErrProvider) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	_ = ctx
	return nil, p.Err
}
