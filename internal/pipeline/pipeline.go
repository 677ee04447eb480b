// Package pipeline orchestrates the evidence-grounded consistency check:
// novel segmentation and indexing once per novel, then per backstory claim
// decomposition, evidence retrieval, concurrent relation judging, conservative
// aggregation, and the final verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/aggregate"
	"github.com/ppiankov/continuity/internal/classify"
	"github.com/ppiankov/continuity/internal/decompose"
	"github.com/ppiankov/continuity/internal/index"
	"github.com/ppiankov/continuity/internal/judge"
	"github.com/ppiankov/continuity/internal/model"
	"github.com/ppiankov/continuity/internal/segment"
	"github.com/ppiankov/continuity/internal/worker"
)

// Stage identifies how far a backstory travelled through the pipeline. Each
// transition is idempotent given the same inputs, so re-runs are safe.
type Stage string

const (
	StageInit              Stage = "INIT"
	StageSegmented         Stage = "SEGMENTED"
	StageClaimsDecomposed  Stage = "CLAIMS_DECOMPOSED"
	StageEvidenceRetrieved Stage = "EVIDENCE_RETRIEVED"
	StageJudged            Stage = "JUDGED"
	StageAggregated        Stage = "AGGREGATED"
	StageDecided           Stage = "DECIDED"
)

// CheckResult is the full outcome for one backstory. Judgments are transient
// evidence kept for explainability; they are not persisted state.
type CheckResult struct {
	BackstoryID string                   `json:"backstory_id"`
	BookName    string                   `json:"book_name"`
	Stage       Stage                    `json:"stage"`
	Claims      []model.Claim            `json:"claims"`
	Judgments   []model.RelationJudgment `json:"judgments,omitempty"`
	Features    model.FeatureVector      `json:"features"`
	Verdict     *model.Verdict           `json:"verdict,omitempty"`
}

// Checker wires the pipeline components. All dependencies are explicitly
// constructed and passed in; the checker holds no process-wide state.
type Checker struct {
	cfg      *model.Config
	embedder index.Embedder
	pool     *worker.Pool
	agg      *aggregate.Aggregator
	decision *classify.Model
	logger   *zap.Logger

	mu      sync.RWMutex
	indexes map[string]*index.Index // book name -> read-only index
}

// NewChecker creates a checker. The decision model may be nil for
// feature-extraction-only use (training).
func NewChecker(cfg *model.Config, embedder index.Embedder, provider judge.Provider, decision *classify.Model, logger *zap.Logger) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Checker{
		cfg:      cfg,
		embedder: embedder,
		pool:     worker.NewPool(provider, cfg.Concurrency.JudgeWorkers, logger),
		agg:      aggregate.New(cfg.Aggregate.StrongThreshold),
		decision: decision,
		logger:   logger,
		indexes:  make(map[string]*index.Index),
	}, nil
}

// BuildNovelIndex segments a novel and builds its semantic index. The index
// is built once and shared read-only across all concurrent queries. A build
// failure is fatal for every backstory referencing this novel.
func (c *Checker) BuildNovelIndex(ctx context.Context, bookName, text string) error {
	units, err := segment.Segment(bookName, text, c.cfg.Segment.UnitSizeTokens, c.cfg.Segment.OverlapTokens)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return &model.DataError{Item: bookName, Reason: "novel text is empty"}
	}

	c.logger.Info("segmented novel",
		zap.String("book", bookName),
		zap.Int("units", len(units)),
	)

	ix, err := index.Build(ctx, c.embedder, units)
	if err != nil {
		return &model.IndexBuildError{BookName: bookName, Err: err}
	}

	c.mu.Lock()
	c.indexes[bookName] = ix
	c.mu.Unlock()

	c.logger.Info("built novel index",
		zap.String("book", bookName),
		zap.Int("size", ix.Size()),
	)
	return nil
}

// indexFor returns the read-only index for a novel.
func (c *Checker) indexFor(bookName string) (*index.Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ix, ok := c.indexes[bookName]
	return ix, ok
}

// Analyze runs a backstory through decomposition, retrieval, judging and
// aggregation, stopping before the verdict. Useful for training, where only
// the feature vector is needed.
func (c *Checker) Analyze(ctx context.Context, bs model.Backstory) (*CheckResult, error) {
	result := &CheckResult{
		BackstoryID: bs.ID,
		BookName:    bs.BookName,
		Stage:       StageInit,
	}

	ix, ok := c.indexFor(bs.BookName)
	if !ok {
		return result, &model.IndexBuildError{
			BookName: bs.BookName,
			Err:      errors.New("no index available for this novel"),
		}
	}
	result.Stage = StageSegmented

	claims, err := decompose.Decompose(bs.ID, bs.Text)
	if err != nil {
		return result, &model.DataError{Item: bs.ID, Reason: err.Error()}
	}
	result.Claims = claims
	result.Stage = StageClaimsDecomposed

	// An empty backstory yields an empty claim set, which aggregates to the
	// defined neutral-default feature vector, never an error.
	tasks := c.retrieve(ctx, ix, claims)
	result.Stage = StageEvidenceRetrieved

	judgments := c.pool.JudgeAll(ctx, tasks)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("backstory %s cancelled during judging: %w", bs.ID, err)
	}
	result.Judgments = judgments
	result.Stage = StageJudged

	result.Features = c.agg.Aggregate(claims, judgments)
	result.Stage = StageAggregated

	return result, nil
}

// retrieve collects the top-K evidence units for every claim. A retrieval
// failure for one claim is recovered locally: the claim keeps zero judgments
// and contributes the neutral default downstream.
func (c *Checker) retrieve(ctx context.Context, ix *index.Index, claims []model.Claim) []worker.Task {
	var tasks []worker.Task
	for _, claim := range claims {
		retrieved, err := ix.Retrieve(ctx, claim.Text, c.cfg.Retrieval.TopK)
		if err != nil {
			c.logger.Warn("evidence retrieval failed, claim contributes neutral default",
				zap.String("claim_id", claim.ID),
				zap.Error(err),
			)
			continue
		}
		for _, r := range retrieved {
			tasks = append(tasks, worker.Task{Claim: claim, Unit: r.Unit})
		}
	}
	return tasks
}

// CheckBackstory runs the full pipeline for one backstory and emits its
// verdict. Every backstory produces exactly one verdict or one error.
func (c *Checker) CheckBackstory(ctx context.Context, bs model.Backstory) (*CheckResult, error) {
	if c.decision == nil {
		return nil, &model.ConfigError{Field: "decision model", Reason: "not loaded"}
	}

	result, err := c.Analyze(ctx, bs)
	if err != nil {
		return result, err
	}

	verdict, err := c.decision.Decide(bs.ID, result.Features)
	if err != nil {
		return result, err
	}
	result.Verdict = &verdict
	result.Stage = StageDecided

	c.logger.Info("decided backstory",
		zap.String("backstory_id", bs.ID),
		zap.String("book", bs.BookName),
		zap.String("verdict", string(verdict.Label)),
		zap.Float64("max_contradiction", result.Features.MaxContradiction),
	)
	return result, nil
}
