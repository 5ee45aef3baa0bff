package server

import (
	"context"

	"github.com/preston-bernstein/replicawatch/internal/poller"
)

// Poller defines the replica poller behavior needed by the server and its HTTP routes.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	State() poller.State
	RequestRefresh() bool
	Subscribe() (<-chan poller.State, func())
}
