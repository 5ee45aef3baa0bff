package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

// SampleReplica returns a healthy replica fixture with a stable ID derived from hostname.
func SampleReplica(hostname string) domainreplicas.Replica {
	return domainreplicas.Replica{
		ID:              uuid.NewSHA1(uuid.NameSpaceDNS, []byte(hostname)),
		Hostname:        hostname,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RelayAddress:    "http://" + hostname + ":8080",
		RegionID:        999,
		DatabaseLatency: 1000,
	}
}

// SampleReplicas returns n healthy replicas named replica-0..replica-(n-1).
func SampleReplicas(n int) []domainreplicas.Replica {
	out := make([]domainreplicas.Replica, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SampleReplica(fmt.Sprintf("replica-%d", i)))
	}
	return out
}
