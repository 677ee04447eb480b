package aggregate

import (
	"fmt"
	"testing"

	"github.com/ppiankov/continuity/internal/model"
)

func claimSet(backstoryID string, n int) []model.Claim {
	claims := make([]model.Claim, n)
	for i := range claims {
		claims[i] = model.Claim{
			ID:          fmt.Sprintf("%s/claim-%d", backstoryID, i),
			BackstoryID: backstoryID,
			Order:       i,
		}
	}
	return claims
}

func judgment(claimID string, label model.RelationLabel, confidence float64) model.RelationJudgment {
	return model.RelationJudgment{
		ClaimID:        claimID,
		EvidenceUnitID: "novel#0",
		Label:          label,
		Confidence:     confidence,
	}
}

func TestAggregate_ConservativeReduction(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 3)

	judgments := []model.RelationJudgment{
		judgment(claims[0].ID, model.RelationContradict, 0.9),
		judgment(claims[0].ID, model.RelationSupport, 0.8),
		judgment(claims[1].ID, model.RelationSupport, 0.6),
		judgment(claims[1].ID, model.RelationNeutral, 0.5),
		judgment(claims[2].ID, model.RelationContradict, 0.4),
	}

	fv := agg.Aggregate(claims, judgments)

	if fv.MaxContradiction != 0.9 {
		t.Errorf("MaxContradiction = %v, want 0.9", fv.MaxContradiction)
	}
	if want := (0.9 + 0 + 0.4) / 3; fv.MeanContradiction != want {
		t.Errorf("MeanContradiction = %v, want %v", fv.MeanContradiction, want)
	}
	if fv.StrongContradictions != 1 {
		t.Errorf("StrongContradictions = %v, want 1 (only 0.9 exceeds 0.7)", fv.StrongContradictions)
	}
	if want := (0.8 + 0.6 + 0) / 3; fv.MeanSupport != want {
		t.Errorf("MeanSupport = %v, want %v", fv.MeanSupport, want)
	}
	if fv.ClaimCount != 3 {
		t.Errorf("ClaimCount = %v, want 3", fv.ClaimCount)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 4)
	judgments := []model.RelationJudgment{
		judgment(claims[2].ID, model.RelationContradict, 0.71),
		judgment(claims[0].ID, model.RelationSupport, 0.33),
		judgment(claims[3].ID, model.RelationContradict, 0.2),
		judgment(claims[1].ID, model.RelationNeutral, 0),
	}

	first := agg.Aggregate(claims, judgments)
	second := agg.Aggregate(claims, judgments)
	if first != second {
		t.Errorf("aggregation is not deterministic: %+v vs %+v", first, second)
	}

	// Arrival order must not matter: the reduction is keyed by claim ID.
	reversed := make([]model.RelationJudgment, len(judgments))
	for i, j := range judgments {
		reversed[len(judgments)-1-i] = j
	}
	third := agg.Aggregate(claims, reversed)
	if first != third {
		t.Errorf("aggregation depends on judgment order: %+v vs %+v", first, third)
	}
}

func TestAggregate_ConservativeDominance(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 2)
	base := []model.RelationJudgment{
		judgment(claims[0].ID, model.RelationContradict, 0.5),
		judgment(claims[1].ID, model.RelationSupport, 0.9),
	}

	before := agg.Aggregate(claims, base)

	// One additional CONTRADICT stronger than the current max must strictly
	// increase MaxContradiction.
	after := agg.Aggregate(claims, append(base, judgment(claims[1].ID, model.RelationContradict, 0.95)))

	if after.MaxContradiction <= before.MaxContradiction {
		t.Errorf("MaxContradiction did not strictly increase: %v -> %v",
			before.MaxContradiction, after.MaxContradiction)
	}
}

func TestAggregate_MissingEvidenceDefault(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 3)

	// Only the first claim has any judgments; the others contribute zeros.
	fv := agg.Aggregate(claims, []model.RelationJudgment{
		judgment(claims[0].ID, model.RelationSupport, 0.6),
	})

	if fv.ClaimCount != 3 {
		t.Errorf("ClaimCount = %v, want 3 (claims without judgments are not excluded)", fv.ClaimCount)
	}
	if fv.MaxContradiction != 0 {
		t.Errorf("MaxContradiction = %v, want 0", fv.MaxContradiction)
	}
	if want := 0.6 / 3; fv.MeanSupport != want {
		t.Errorf("MeanSupport = %v, want %v", fv.MeanSupport, want)
	}
}

func TestAggregate_FailedJudgmentsAreNeutral(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 1)

	failed := model.FailedJudgment(claims[0].ID, "novel#0")
	fv := agg.Aggregate(claims, []model.RelationJudgment{failed})

	if fv.MaxContradiction != 0 || fv.MeanSupport != 0 {
		t.Errorf("failed judgment leaked signal: %+v", fv)
	}
	if fv.ClaimCount != 1 {
		t.Errorf("ClaimCount = %v, want 1", fv.ClaimCount)
	}
}

func TestAggregate_EmptyClaims(t *testing.T) {
	agg := New(0.7)

	fv := agg.Aggregate(nil, nil)
	if fv != (model.FeatureVector{}) {
		t.Errorf("expected the neutral-default zero vector, got %+v", fv)
	}
}

func TestAggregate_IgnoresForeignClaims(t *testing.T) {
	agg := New(0.7)
	claims := claimSet("bs", 1)

	fv := agg.Aggregate(claims, []model.RelationJudgment{
		judgment("other/claim-0", model.RelationContradict, 1.0),
	})
	if fv.MaxContradiction != 0 {
		t.Errorf("judgment for a foreign claim leaked into the vector: %+v", fv)
	}
}
