package testutil

import (
	"github.com/preston-bernstein/replicawatch/internal/app/replicas"
	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/store"
)

// NewServiceWithReplicas builds a replica service backed by an in-memory store preloaded with list.
func NewServiceWithReplicas(list []domainreplicas.Replica) *replicas.Service {
	ms := store.NewMemoryStore()
	if len(list) > 0 {
		ms.SetReplicas(list)
	}
	return replicas.NewService(ms)
}
