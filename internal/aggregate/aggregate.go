// Package aggregate combines per-claim relation judgments into a fixed-schema
// feature vector using conservative, contradiction-dominant logic: one
// decisive contradiction outweighs many confirmations, while support only
// accumulates as corroborating weight.
package aggregate

import (
	"github.com/ppiankov/continuity/internal/model"
)

// Aggregator reduces relation judgments into feature vectors.
type Aggregator struct {
	strongThreshold float64
}

// New creates an aggregator. strongThreshold is the contradiction confidence
// above which a claim counts as strongly contradicted.
func New(strongThreshold float64) *Aggregator {
	return &Aggregator{strongThreshold: strongThreshold}
}

// claimScores is the per-claim reduction of all judgments against that claim.
type claimScores struct {
	contradiction float64
	support       float64
}

// Aggregate reduces all judgments for one backstory into its feature vector.
// The reduction is keyed by claim ID, never by arrival order, so concurrent
// judge completion order cannot change the result. A claim with no judgments
// (retrieval or judge failure) contributes a neutral default of zero
// contradiction and zero support rather than being excluded: excluding claims
// would silently shrink the evidence and bias toward CONSISTENT.
func (a *Aggregator) Aggregate(claims []model.Claim, judgments []model.RelationJudgment) model.FeatureVector {
	if len(claims) == 0 {
		return model.FeatureVector{}
	}

	perClaim := make(map[string]*claimScores, len(claims))
	for _, c := range claims {
		perClaim[c.ID] = &claimScores{}
	}

	for _, j := range judgments {
		scores, ok := perClaim[j.ClaimID]
		if !ok {
			continue // judgment for a claim outside this backstory
		}
		if j.Failed {
			continue // failure-flagged NEUTRAL carries no signal
		}
		switch j.Label {
		case model.RelationContradict:
			if j.Confidence > scores.contradiction {
				scores.contradiction = j.Confidence
			}
		case model.RelationSupport:
			if j.Confidence > scores.support {
				scores.support = j.Confidence
			}
		case model.RelationNeutral:
			// Neutral contributes nothing either way.
		}
	}

	var (
		maxContradiction float64
		sumContradiction float64
		sumSupport       float64
		strongCount      int
	)

	// Iterate the claim slice, not the map: identical inputs must yield
	// bit-identical feature vectors.
	for _, c := range claims {
		scores := perClaim[c.ID]
		if scores.contradiction > maxContradiction {
			maxContradiction = scores.contradiction
		}
		sumContradiction += scores.contradiction
		sumSupport += scores.support
		if scores.contradiction > a.strongThreshold {
			strongCount++
		}
	}

	n := float64(len(claims))
	return model.FeatureVector{
		MaxContradiction:     maxContradiction,
		MeanContradiction:    sumContradiction / n,
		StrongContradictions: float64(strongCount),
		MeanSupport:          sumSupport / n,
		ClaimCount:           n,
	}
}
