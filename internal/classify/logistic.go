// Package classify turns aggregated evidence feature vectors into the final
// binary verdict via a supervised logistic decision boundary.
package classify

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ppiankov/continuity/internal/model"
)

// Fitting is plain batch gradient descent with zero initialization: no
// randomness, so identical training data yields identical weights.
const (
	learningRate = 0.5
	iterations   = 2000
)

// Model is a logistic regression over the evidence feature vector. The
// positive class is INCONSISTENT. The MaxContradiction weight is constrained
// non-negative during fitting, so a stronger contradiction can never move a
// verdict toward CONSISTENT.
type Model struct {
	Weights [model.FeatureCount]float64 `json:"weights"`
	Bias    float64                     `json:"bias"`
	Trained bool                        `json:"trained"`
}

// New returns an untrained model.
func New() *Model {
	return &Model{}
}

// DefaultModel returns the fallback thresholding policy used when no trained
// model is available: inconsistent iff max contradiction exceeds 0.5.
func DefaultModel() *Model {
	m := &Model{Trained: true}
	m.Weights[0] = 10
	m.Bias = -5
	return m
}

// Fit trains the decision boundary on labeled feature vectors.
func (m *Model) Fit(vectors []model.FeatureVector, labels []model.VerdictLabel) error {
	if len(vectors) == 0 {
		return &model.DataError{Item: "training set", Reason: "no examples"}
	}
	if len(vectors) != len(labels) {
		return &model.DataError{Item: "training set", Reason: "feature/label count mismatch"}
	}

	x := make([][]float64, len(vectors))
	y := make([]float64, len(vectors))
	for i, fv := range vectors {
		values := fv.Values()
		if err := checkFinite(values); err != nil {
			return err
		}
		x[i] = values
		if labels[i] == model.VerdictInconsistent {
			y[i] = 1
		}
	}

	var weights [model.FeatureCount]float64
	var bias float64
	n := float64(len(x))

	for iter := 0; iter < iterations; iter++ {
		var gradW [model.FeatureCount]float64
		var gradB float64

		for i := range x {
			z := bias
			for j := range weights {
				z += weights[j] * x[i][j]
			}
			diff := sigmoid(z) - y[i]
			for j := range weights {
				gradW[j] += diff * x[i][j]
			}
			gradB += diff
		}

		for j := range weights {
			weights[j] -= learningRate * gradW[j] / n
		}
		bias -= learningRate * gradB / n

		// Contradiction dominance: MaxContradiction must never count
		// toward consistency.
		if weights[0] < 0 {
			weights[0] = 0
		}
	}

	m.Weights = weights
	m.Bias = bias
	m.Trained = true
	return nil
}

// Score returns the probability that the backstory is inconsistent.
func (m *Model) Score(fv model.FeatureVector) (float64, error) {
	if !m.Trained {
		return 0, &model.DataError{Item: "decision model", Reason: "not trained"}
	}

	values := fv.Values()
	if err := checkFinite(values); err != nil {
		return 0, err
	}

	z := m.Bias
	for j, w := range m.Weights {
		z += w * values[j]
	}
	return sigmoid(z), nil
}

// Decide emits the binary verdict for one backstory's feature vector.
func (m *Model) Decide(backstoryID string, fv model.FeatureVector) (model.Verdict, error) {
	p, err := m.Score(fv)
	if err != nil {
		return model.Verdict{}, err
	}

	label := model.VerdictConsistent
	if p > 0.5 {
		label = model.VerdictInconsistent
	}
	return model.Verdict{BackstoryID: backstoryID, Label: label}, nil
}

// Save serializes the learned parameters.
func (m *Model) Save() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Load deserializes a previously saved model.
func Load(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("load decision model: %w", err)
	}
	if !m.Trained {
		return nil, &model.DataError{Item: "decision model", Reason: "persisted model is untrained"}
	}
	return &m, nil
}

func checkFinite(values []float64) error {
	for j, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &model.DataError{Item: "feature vector", Reason: fmt.Sprintf("non-finite value at feature %d", j)}
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
