package index

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/cache"
	"github.com/ppiankov/continuity/internal/model"
)

// Embedder converts texts into dense vectors comparable by cosine similarity.
// Implementations must be deterministic for identical input within one index's
// lifetime.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding function. Vectors from different models
	// are never comparable.
	Model() string
}

// OpenAIEmbedder implements Embedder via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	batchSize int
	logger    *zap.Logger
}

// NewOpenAIEmbedder creates an embedder for the given model.
func NewOpenAIEmbedder(cfg model.EmbeddingConfig, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed embeds texts in batches. Every input text produces exactly one vector.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		began := time.Now()
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts", start, end, len(resp.Data), end-start)
		}

		for _, d := range resp.Data {
			vectors = append(vectors, d.Embedding)
		}

		e.logger.Debug("embedded batch",
			zap.String("model", e.model),
			zap.Int("texts", end-start),
			zap.Duration("took", time.Since(began)),
		)
	}

	return vectors, nil
}

// CachedEmbedder wraps an Embedder with a layered cache so identical texts are
// embedded at most once across runs.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner Embedder, c cache.Cache, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c, ttl: ttl}
}

// Model returns the wrapped embedder's model name.
func (e *CachedEmbedder) Model() string {
	return e.inner.Model()
}

// Embed serves cached vectors where possible and embeds only the misses.
func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if data, found := e.cache.Get(cache.EmbeddingKey(e.inner.Model(), text)); found {
			vec, err := cache.DecodeVector(data)
			if err == nil {
				vectors[i] = vec
				continue
			}
			// Corrupt entry: fall through and re-embed.
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) > 0 {
		embedded, err := e.inner.Embed(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(missTexts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(missTexts))
		}
		for j, vec := range embedded {
			vectors[missIdx[j]] = vec
			_ = e.cache.Set(cache.EmbeddingKey(e.inner.Model(), missTexts[j]), cache.EncodeVector(vec), e.ttl)
		}
	}

	return vectors, nil
}
