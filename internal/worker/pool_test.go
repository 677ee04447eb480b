package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/model"
)

// scriptedJudge answers by keyword and counts concurrent callers.
type scriptedJudge struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	failClaims  map[string]bool
}

func (s *scriptedJudge) Name() string { return "scripted" }

func (s *scriptedJudge) IsAvailable(context.Context) bool { return true }

func (s *scriptedJudge) Judge(_ context.Context, claimText, evidenceText string) (model.RelationLabel, float64, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	fail := s.failClaims[claimText]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if fail {
		return model.RelationNeutral, 0, errors.New("judge unavailable")
	}
	if strings.Contains(evidenceText, "Paris") && strings.Contains(claimText, "Tokyo") {
		return model.RelationContradict, 0.9, nil
	}
	return model.RelationNeutral, 0, nil
}

func tasksFor(n int, claimText string) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			Claim: model.Claim{ID: "bs/claim-0", Text: claimText},
			Unit: model.EvidenceUnit{
				ID:            "novel#" + string(rune('0'+i)),
				SequenceIndex: i,
				Text:          "Alice was born in Paris in 1990.",
			},
		}
	}
	return tasks
}

func TestJudgeAll_OneJudgmentPerTask(t *testing.T) {
	pool := NewPool(&scriptedJudge{}, 3, zap.NewNop())
	tasks := tasksFor(5, "Alice was born in Tokyo")

	judgments := pool.JudgeAll(context.Background(), tasks)
	if len(judgments) != len(tasks) {
		t.Fatalf("expected %d judgments, got %d", len(tasks), len(judgments))
	}

	for i, j := range judgments {
		if j.ClaimID != tasks[i].Claim.ID || j.EvidenceUnitID != tasks[i].Unit.ID {
			t.Errorf("judgment %d keyed to wrong pair: %+v", i, j)
		}
		if j.Label != model.RelationContradict {
			t.Errorf("judgment %d: got %s, want CONTRADICT", i, j.Label)
		}
	}
}

func TestJudgeAll_FailureBecomesNeutralFlagged(t *testing.T) {
	j := &scriptedJudge{failClaims: map[string]bool{"broken claim": true}}
	pool := NewPool(j, 2, zap.NewNop())

	judgments := pool.JudgeAll(context.Background(), tasksFor(3, "broken claim"))
	for i, jm := range judgments {
		if !jm.Failed {
			t.Errorf("judgment %d should carry the failure flag", i)
		}
		if jm.Label != model.RelationNeutral {
			t.Errorf("judgment %d: failed call must be NEUTRAL, got %s", i, jm.Label)
		}
	}
}

func TestJudgeAll_BoundedConcurrency(t *testing.T) {
	j := &scriptedJudge{}
	pool := NewPool(j, 2, zap.NewNop())

	pool.JudgeAll(context.Background(), tasksFor(8, "some claim"))

	if j.maxInFlight > 2 {
		t.Errorf("observed %d concurrent judge calls, limit is 2", j.maxInFlight)
	}
}

func TestJudgeAll_Empty(t *testing.T) {
	pool := NewPool(&scriptedJudge{}, 2, zap.NewNop())
	if got := pool.JudgeAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no judgments, got %d", len(got))
	}
}
