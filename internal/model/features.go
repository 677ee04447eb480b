package model

// FeatureVector is the fixed-schema numeric summary of aggregated evidence for
// one backstory. Never mutated after construction.
type FeatureVector struct {
	MaxContradiction     float64 `json:"max_contradiction"`
	MeanContradiction    float64 `json:"mean_contradiction"`
	StrongContradictions float64 `json:"strong_contradictions"`
	MeanSupport          float64 `json:"mean_support"`
	ClaimCount           float64 `json:"claim_count"`
}

// Values returns the features in their canonical order. MaxContradiction comes
// first: a single strong contradiction anywhere dominates the decision.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.MaxContradiction,
		f.MeanContradiction,
		f.StrongContradictions,
		f.MeanSupport,
		f.ClaimCount,
	}
}

// FeatureCount is the dimension of the feature vector.
const FeatureCount = 5

// VerdictLabel is the terminal binary outcome for a backstory.
type VerdictLabel string

const (
	VerdictConsistent   VerdictLabel = "CONSISTENT"
	VerdictInconsistent VerdictLabel = "INCONSISTENT"
)

// Verdict is the terminal output for one backstory; immutable.
type Verdict struct {
	BackstoryID string       `json:"backstory_id"`
	Label       VerdictLabel `json:"label"`
}
