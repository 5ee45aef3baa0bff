package store

import (
	"sync"

	"github.com/google/uuid"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// MemoryStore keeps a thread-safe, ordered snapshot of replicas in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	replicas []domainreplicas.Replica
	byID     map[uuid.UUID]int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		replicas: []domainreplicas.Replica{},
		byID:     make(map[uuid.UUID]int),
	}
}

// ListReplicas returns a copy of the current snapshot in API order.
func (s *MemoryStore) ListReplicas() []domainreplicas.Replica {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domainreplicas.Clone(s.replicas)
}

// GetReplica retrieves a replica by ID.
func (s *MemoryStore) GetReplica(id uuid.UUID) (domainreplicas.Replica, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domainreplicas.Replica{}, false
	}
	return s.replicas[idx], true
}

// SetReplicas replaces the existing snapshot.
func (s *MemoryStore) SetReplicas(replicas []domainreplicas.Replica) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replicas = domainreplicas.Clone(replicas)
	if s.replicas == nil {
		s.replicas = []domainreplicas.Replica{}
	}
	s.byID = make(map[uuid.UUID]int, len(replicas))
	for i, r := range s.replicas {
		s.byID[r.ID] = i
	}
}
