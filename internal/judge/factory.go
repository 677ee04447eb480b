package judge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/model"
)

// NewProvider creates a relation judge provider based on configuration. The
// returned provider is already wrapped with rate limiting and bounded retries.
func NewProvider(cfg model.JudgeConfig, logger *zap.Logger) (Provider, error) {
	var (
		inner Provider
		err   error
	)

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		inner, err = NewOpenAIProvider(cfg, logger)

	case "anthropic", "claude":
		inner, err = NewAnthropicProvider(cfg, logger)

	case "ollama":
		inner, err = NewOllamaProvider(cfg, logger)

	default:
		return nil, fmt.Errorf("unknown judge provider: %s (supported: openai, anthropic, ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewThrottledProvider(inner, cfg, logger), nil
}
