// Package worker dispatches claim-evidence judge calls across a bounded pool
// of goroutines.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/judge"
	"github.com/ppiankov/continuity/internal/model"
)

// Task is one (claim, evidence unit) pair awaiting judgment.
type Task struct {
	Claim model.Claim
	Unit  model.EvidenceUnit
}

// Pool executes judge tasks with bounded concurrency. Judge calls within one
// backstory are independent, so completion order is arbitrary; results are
// keyed by (claim, unit), never by arrival.
type Pool struct {
	provider judge.Provider
	workers  int
	logger   *zap.Logger
}

// NewPool creates a pool with the given number of workers.
func NewPool(provider judge.Provider, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		provider: provider,
		workers:  workers,
		logger:   logger,
	}
}

// JudgeAll runs every task and returns exactly one judgment per task, in task
// order. A failed judge call produces a failure-flagged NEUTRAL judgment
// rather than dropping the pair, so the feature-vector shape is preserved.
// JudgeAll returns only after all in-flight calls have finished (the barrier
// before aggregation).
func (p *Pool) JudgeAll(ctx context.Context, tasks []Task) []model.RelationJudgment {
	results := make([]model.RelationJudgment, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type indexed struct {
		idx  int
		task Task
	}

	queue := make(chan indexed)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				results[item.idx] = p.judgeOne(ctx, item.task)
			}
		}()
	}

	for i, task := range tasks {
		queue <- indexed{idx: i, task: task}
	}
	close(queue)

	wg.Wait()
	return results
}

func (p *Pool) judgeOne(ctx context.Context, task Task) model.RelationJudgment {
	label, confidence, err := p.provider.Judge(ctx, task.Claim.Text, task.Unit.Text)
	if err != nil {
		callErr := &model.JudgeCallError{
			ClaimID:        task.Claim.ID,
			EvidenceUnitID: task.Unit.ID,
			Err:            err,
		}
		p.logger.Warn("judge call failed, recording neutral judgment",
			zap.String("claim_id", task.Claim.ID),
			zap.String("unit_id", task.Unit.ID),
			zap.Error(callErr),
		)
		return model.FailedJudgment(task.Claim.ID, task.Unit.ID)
	}

	return model.RelationJudgment{
		ClaimID:        task.Claim.ID,
		EvidenceUnitID: task.Unit.ID,
		Label:          label,
		Confidence:     confidence,
	}
}
