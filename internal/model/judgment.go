package model

// RelationLabel is the closed set of outcomes when checking one claim against
// one evidence unit. Never a free-form string, so aggregation stays exhaustive.
type RelationLabel string

const (
	RelationContradict RelationLabel = "CONTRADICT"
	RelationSupport    RelationLabel = "SUPPORT"
	RelationNeutral    RelationLabel = "NEUTRAL"
)

// Valid reports whether the label is one of the closed set.
func (l RelationLabel) Valid() bool {
	switch l {
	case RelationContradict, RelationSupport, RelationNeutral:
		return true
	}
	return false
}

// RelationJudgment is the labeled outcome of checking exactly one
// (claim, evidence unit) pair. A failed judge call is recorded as NEUTRAL with
// Failed set rather than dropped, preserving the feature-vector shape.
type RelationJudgment struct {
	ClaimID        string        `json:"claim_id"`
	EvidenceUnitID string        `json:"evidence_unit_id"`
	Label          RelationLabel `json:"label"`
	Confidence     float64       `json:"confidence"` // [0,1]
	Failed         bool          `json:"failed,omitempty"`
}

// FailedJudgment builds the neutral placeholder recorded when a judge call
// could not complete.
func FailedJudgment(claimID, unitID string) RelationJudgment {
	return RelationJudgment{
		ClaimID:        claimID,
		EvidenceUnitID: unitID,
		Label:          RelationNeutral,
		Confidence:     0,
		Failed:         true,
	}
}
