package server

import (
	"log/slog"

	"github.com/preston-bernstein/replicawatch/internal/config"
	"github.com/preston-bernstein/replicawatch/internal/metrics"
	"github.com/preston-bernstein/replicawatch/internal/providers"
)

// providerFactory assembles the configured provider with the shared instrumentation wrapper.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.ReplicaProvider {
	base, name := selectProvider(cfg, f.logger)
	return f.wrap(name, base)
}

// wrap instruments base under name. Failures are never retried here; the poller's interval is the retry cadence.
func (f providerFactory) wrap(name string, base providers.ReplicaProvider) providers.ReplicaProvider {
	return providers.NewInstrumentedProvider(base, f.logger, f.metrics, normalizeProviderName(name, base))
}
