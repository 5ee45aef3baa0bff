package server

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/replicawatch/internal/providers"
)

// normalizeProviderName returns a lower-cased provider name, deriving from instance when not explicitly configured.
func normalizeProviderName(raw string, provider providers.ReplicaProvider) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if provider != nil {
		name := strings.ToLower(fmt.Sprintf("%T", provider))
		return strings.TrimPrefix(name, "*")
	}
	return "provider"
}
