package providers

import (
	"context"
	"log/slog"
	"time"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/metrics"
)

// instrumentedProvider records one upstream attempt per fetch. It never retries:
// a failed fetch is surfaced to the caller as-is.
type instrumentedProvider struct {
	inner        ReplicaProvider
	logger       *slog.Logger
	metrics      *metrics.Recorder
	providerName string
	now          func() time.Time
}

// NewInstrumentedProvider wraps inner with metrics and failure logging.
func NewInstrumentedProvider(inner ReplicaProvider, logger *slog.Logger, recorder *metrics.Recorder, providerName string) ReplicaProvider {
	if providerName == "" {
		providerName = "provider"
	}
	return &instrumentedProvider{
		inner:        inner,
		logger:       logger,
		metrics:      recorder,
		providerName: providerName,
		now:          time.Now,
	}
}

func (p *instrumentedProvider) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	if p.inner == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.providerName, "provider unavailable")
		return nil, ErrProviderUnavailable
	}

	start := p.now()
	replicas, err := p.inner.FetchReplicas(ctx)
	elapsed := p.now().Sub(start)
	p.metrics.RecordUpstreamAttempt(p.providerName, elapsed, err)

	if err != nil {
		if rlErr, ok := AsRateLimitError(err); ok {
			p.metrics.RecordRateLimit(p.providerName, rlErr.RetryAfter)
			logWithProvider(ctx, p.logger, slog.LevelWarn, p.providerName, "upstream rate limited",
				slog.Duration("retry_after", rlErr.RetryAfter),
			)
			return nil, err
		}
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.providerName, "upstream fetch failed",
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
			slog.Any("error", err),
		)
		return nil, err
	}

	logWithProvider(ctx, p.logger, slog.LevelDebug, p.providerName, "upstream fetch ok",
		slog.Int(logging.FieldCount, len(replicas)),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return replicas, nil
}
