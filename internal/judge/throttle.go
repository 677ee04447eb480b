package judge

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ppiankov/continuity/internal/model"
)

// ThrottledProvider wraps a Provider with a shared rate limiter and bounded
// retries with exponential backoff. All judge workers share one limiter, so
// the configured requests-per-second budget holds across the whole run.
type ThrottledProvider struct {
	inner      Provider
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewThrottledProvider wraps inner with rate limiting and retries.
func NewThrottledProvider(inner Provider, cfg model.JudgeConfig, logger *zap.Logger) *ThrottledProvider {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 3
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &ThrottledProvider{
		inner:      inner,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: maxRetries,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Name returns the wrapped provider's name.
func (p *ThrottledProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable delegates to the wrapped provider.
func (p *ThrottledProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Judge waits for rate-limit clearance and retries transient failures with
// exponential backoff. An exhausted retry budget returns the last error; the
// orchestrator converts it into a failure-flagged NEUTRAL judgment.
func (p *ThrottledProvider) Judge(ctx context.Context, claimText, evidenceText string) (model.RelationLabel, float64, error) {
	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			p.logger.Warn("judge call failed, retrying",
				zap.String("provider", p.inner.Name()),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return model.RelationNeutral, 0, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return model.RelationNeutral, 0, err
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if p.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		}

		label, confidence, err := p.inner.Judge(callCtx, claimText, evidenceText)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return label, confidence, nil
		}
		lastErr = err

		// A cancelled backstory must not burn the remaining retry budget.
		if ctx.Err() != nil {
			return model.RelationNeutral, 0, ctx.Err()
		}
	}

	return model.RelationNeutral, 0, lastErr
}
