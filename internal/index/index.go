// Package index embeds evidence units into a vector space and answers
// nearest-neighbor queries by cosine similarity. One index per novel, built
// once, read-only afterwards, safe for concurrent queries.
package index

import (
	"context"
	"math"
	"sort"

	"github.com/ppiankov/continuity/internal/model"
)

// Index owns the evidence units of one novel and their embedding vectors.
type Index struct {
	embedder Embedder
	units    []model.EvidenceUnit
	vectors  [][]float32
	dim      int
}

// Build embeds every unit exactly once and constructs the index. The
// resulting index size always equals the input unit count; any shortfall is
// an error, never a silent drop.
func Build(ctx context.Context, embedder Embedder, units []model.EvidenceUnit) (*Index, error) {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(units) {
		return nil, &model.DataError{Item: "embeddings", Reason: "vector count does not match unit count"}
	}

	dim := 0
	for i, vec := range vectors {
		if i == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, &model.DataError{Item: "embeddings", Reason: "inconsistent vector dimensions"}
		}
		normalize(vec)
	}

	return &Index{
		embedder: embedder,
		units:    append([]model.EvidenceUnit(nil), units...),
		vectors:  vectors,
		dim:      dim,
	}, nil
}

// Size returns the number of indexed units.
func (ix *Index) Size() int {
	return len(ix.units)
}

// Retrieve embeds the query text with the index's own embedding function and
// returns the k most similar units.
func (ix *Index) Retrieve(ctx context.Context, text string, k int) ([]model.RetrievedUnit, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	vec := vectors[0]
	normalize(vec)
	return ix.Query(vec, k), nil
}

// Query returns the k nearest units by cosine similarity, descending, with
// ties broken by ascending sequence index. A k larger than the index size
// returns all units.
func (ix *Index) Query(vec []float32, k int) []model.RetrievedUnit {
	results := make([]model.RetrievedUnit, len(ix.units))
	for i, unit := range ix.units {
		results[i] = model.RetrievedUnit{
			Unit:       unit,
			Similarity: dot(vec, ix.vectors[i]),
		}
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Similarity != results[b].Similarity {
			return results[a].Similarity > results[b].Similarity
		}
		return results[a].Unit.SequenceIndex < results[b].Unit.SequenceIndex
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
