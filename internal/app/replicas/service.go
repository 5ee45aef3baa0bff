package replicas

import (
	"github.com/google/uuid"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// Store defines the contract for persisting and retrieving replicas.
type Store interface {
	ListReplicas() []domainreplicas.Replica
	GetReplica(id uuid.UUID) (domainreplicas.Replica, bool)
	SetReplicas(replicas []domainreplicas.Replica)
}

// Service coordinates replica operations using a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Replicas returns the last successful snapshot.
func (s *Service) Replicas() []domainreplicas.Replica {
	return s.store.ListReplicas()
}

// ReplicaByID returns a single replica if present.
func (s *Service) ReplicaByID(id uuid.UUID) (domainreplicas.Replica, bool) {
	return s.store.GetReplica(id)
}

// ReplaceReplicas swaps the stored snapshot. The poller calls it after every successful fetch.
func (s *Service) ReplaceReplicas(replicas []domainreplicas.Replica) {
	s.store.SetReplicas(replicas)
}
