package server

import (
	"log/slog"
	"strings"

	"github.com/preston-bernstein/replicawatch/internal/config"
	"github.com/preston-bernstein/replicawatch/internal/providers"
	"github.com/preston-bernstein/replicawatch/internal/providers/deployment"
	"github.com/preston-bernstein/replicawatch/internal/providers/fixture"
)

const (
	providerFixture    = "fixture"
	providerDeployment = "deployment"
)

// selectProvider returns the configured provider and the name it is reported under.
// Unknown names fall back to the fixture and are reported as such.
func selectProvider(cfg config.Config, logger *slog.Logger) (providers.ReplicaProvider, string) {
	switch strings.ToLower(cfg.Provider) {
	case providerFixture, "":
		return fixture.New(), providerFixture
	case providerDeployment:
		return deployment.NewClient(deployment.Config{
			BaseURL:      cfg.Deployment.URL,
			SessionToken: cfg.Deployment.SessionToken,
			Timeout:      cfg.Deployment.Timeout,
		}), providerDeployment
	default:
		if logger != nil {
			logger.Warn("unknown provider, falling back to fixture", slog.String("provider", cfg.Provider))
		}
		return fixture.New(), providerFixture
	}
}
