package ml

import (
	"context"
	"time"

	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/adapter"
	"smart-support-router/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.Classifier = (*FailoverClassifier)(nil)

// FailoverClassifier is the try-primary-then-fallback policy. The primary
// runs under its own timeout so a stuck call cannot hold a worker until the
// processing lease expires; any primary failure degrades to the fallback.
// Because the fallback is total, Classify never returns an error.
type FailoverClassifier struct {
	primary  adapter.Classifier // nil when no primary is configured
	fallback adapter.Classifier
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewFailoverClassifier(primary, fallback adapter.Classifier, timeout time.Duration, logger *zerolog.Logger) *FailoverClassifier {
	l := logger.With().Str("component", "FailoverClassifier").Logger()
	return &FailoverClassifier{primary: primary, fallback: fallback, timeout: timeout, log: &l}
}

func (f *FailoverClassifier) Classify(ctx context.Context, text string) (model.Category, float64, error) {
	if f.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		start := time.Now()
		category, score, err := f.primary.Classify(cctx, text)
		cancel()
		latency := time.Since(start)
		metrics.ObserveClassify("primary", int(latency/time.Millisecond), err == nil)
		if err == nil {
			return category, model.ClampScore(score), nil
		}
		f.log.Warn().Err(err).Dur("latency", latency).Msg("primary classification failed, using fallback")
	}

	start := time.Now()
	category, score, _ := f.fallback.Classify(ctx, text)
	metrics.ObserveClassify("fallback", int(time.Since(start)/time.Millisecond), true)
	return category, model.ClampScore(score), nil
}
