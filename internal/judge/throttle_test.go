package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/model"
)

// flakyProvider fails a fixed number of times before answering.
type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) IsAvailable(context.Context) bool { return true }

func (f *flakyProvider) Judge(_ context.Context, _, _ string) (model.RelationLabel, float64, error) {
	f.calls++
	if f.calls <= f.failures {
		return model.RelationNeutral, 0, errors.New("rate limited")
	}
	return model.RelationContradict, 0.9, nil
}

func throttleConfig() model.JudgeConfig {
	return model.JudgeConfig{
		MaxRetries:        3,
		RequestsPerSecond: 1000, // effectively unthrottled in tests
		Burst:             1000,
		Timeout:           time.Second,
	}
}

func TestThrottledProvider_RetriesTransientFailures(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	p := NewThrottledProvider(inner, throttleConfig(), zap.NewNop())

	label, confidence, err := p.Judge(context.Background(), "claim", "evidence")
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if label != model.RelationContradict || confidence != 0.9 {
		t.Errorf("got (%s, %v), want (CONTRADICT, 0.9)", label, confidence)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestThrottledProvider_ExhaustedRetriesReturnError(t *testing.T) {
	inner := &flakyProvider{failures: 10}
	p := NewThrottledProvider(inner, throttleConfig(), zap.NewNop())

	_, _, err := p.Judge(context.Background(), "claim", "evidence")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if inner.calls != 3 {
		t.Errorf("expected exactly max_retries calls, got %d", inner.calls)
	}
}

func TestThrottledProvider_CancelledContext(t *testing.T) {
	inner := &flakyProvider{failures: 10}
	p := NewThrottledProvider(inner, throttleConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Judge(ctx, "claim", "evidence")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
