package model

import "time"

// Config holds the complete runtime configuration.
//
// Hierarchy (highest to lowest priority): CLI flags, environment variables
// (CONTINUITY_*), config file (~/.continuity/config.yaml), defaults.
type Config struct {
	Segment     SegmentConfig     `yaml:"segment" mapstructure:"segment"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Judge       JudgeConfig       `yaml:"judge" mapstructure:"judge"`
	Aggregate   AggregateConfig   `yaml:"aggregate" mapstructure:"aggregate"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// SegmentConfig controls how novels are split into evidence units.
type SegmentConfig struct {
	UnitSizeTokens int `yaml:"unit_size_tokens" mapstructure:"unit_size_tokens"`
	OverlapTokens  int `yaml:"overlap_tokens" mapstructure:"overlap_tokens"`
}

// RetrievalConfig controls per-claim evidence retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// EmbeddingConfig selects and tunes the embedding function.
type EmbeddingConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"` // env only, never persisted
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// JudgeConfig selects and tunes the relation judge provider.
type JudgeConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"-" mapstructure:"-"` // env only, never persisted
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"` // per judge call
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// AggregateConfig tunes the conservative evidence aggregation.
type AggregateConfig struct {
	// StrongThreshold is the contradiction confidence above which a claim
	// counts as strongly contradicted.
	StrongThreshold float64 `yaml:"strong_threshold" mapstructure:"strong_threshold"`
}

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds concurrent judge calls.
type ConcurrencyConfig struct {
	JudgeWorkers int `yaml:"judge_workers" mapstructure:"judge_workers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Segment: SegmentConfig{
			UnitSizeTokens: 800,
			OverlapTokens:  100,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			BatchSize: 64,
		},
		Judge: JudgeConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RequestsPerSecond: 3,
			Burst:             3,
		},
		Aggregate: AggregateConfig{
			StrongThreshold: 0.7,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			JudgeWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:  false,
			LogLevel: "info",
		},
	}
}

// Validate fails fast on configuration that would corrupt processing.
func (c *Config) Validate() error {
	if c.Segment.UnitSizeTokens <= 0 {
		return &ConfigError{Field: "segment.unit_size_tokens", Reason: "must be positive"}
	}
	if c.Segment.OverlapTokens < 0 {
		return &ConfigError{Field: "segment.overlap_tokens", Reason: "must not be negative"}
	}
	if c.Segment.OverlapTokens >= c.Segment.UnitSizeTokens {
		return &ConfigError{Field: "segment.overlap_tokens", Reason: "must be smaller than unit_size_tokens"}
	}
	if c.Retrieval.TopK <= 0 {
		return &ConfigError{Field: "retrieval.top_k", Reason: "must be positive"}
	}
	if c.Aggregate.StrongThreshold < 0 || c.Aggregate.StrongThreshold > 1 {
		return &ConfigError{Field: "aggregate.strong_threshold", Reason: "must be in [0,1]"}
	}
	if c.Concurrency.JudgeWorkers <= 0 {
		return &ConfigError{Field: "concurrency.judge_workers", Reason: "must be positive"}
	}
	return nil
}
