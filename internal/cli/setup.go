package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/cache"
	"github.com/ppiankov/continuity/internal/classify"
	"github.com/ppiankov/continuity/internal/index"
	"github.com/ppiankov/continuity/internal/judge"
	"github.com/ppiankov/continuity/internal/model"
	"github.com/ppiankov/continuity/internal/pipeline"
)

// newEmbedder builds the embedding function, wrapped in the layered cache
// when caching is enabled.
func newEmbedder(cfg *model.Config, logger *zap.Logger) (index.Embedder, error) {
	embedder, err := index.NewOpenAIEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return embedder, nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		dir = home + "/.continuity/cache"
	}

	layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	return index.NewCachedEmbedder(embedder, layered, cfg.Cache.DiskTTL), nil
}

// newChecker assembles the full pipeline. A nil decision model restricts the
// checker to feature extraction.
func newChecker(cfg *model.Config, decision *classify.Model, logger *zap.Logger) (*pipeline.Checker, error) {
	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	provider, err := judge.NewProvider(cfg.Judge, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewChecker(cfg, embedder, provider, decision, logger)
}

// loadDecisionModel reads a trained model from disk, or falls back to the
// built-in contradiction-threshold model when no path is given.
func loadDecisionModel(path string) (*classify.Model, error) {
	if path == "" {
		return classify.DefaultModel(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file %s: %w", path, err)
	}
	return classify.Load(data)
}
