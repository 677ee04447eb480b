// Package segment splits long novel text into overlapping fixed-size
// evidence units.
package segment

import (
	"fmt"
	"strings"

	"github.com/ppiankov/continuity/internal/model"
)

// Segment splits text into overlapping evidence units of unitSize whitespace
// tokens, each advancing by unitSize-overlap tokens. The trailing unit may be
// shorter than unitSize and is kept, never dropped or padded. Tokenization is
// strings.Fields, so re-running on identical input yields identical units.
func Segment(sourceNovel, text string, unitSize, overlap int) ([]model.EvidenceUnit, error) {
	if unitSize <= 0 {
		return nil, &model.ConfigError{Field: "unit_size_tokens", Reason: "must be positive"}
	}
	if overlap < 0 {
		return nil, &model.ConfigError{Field: "overlap_tokens", Reason: "must not be negative"}
	}
	if overlap >= unitSize {
		return nil, &model.ConfigError{Field: "overlap_tokens", Reason: "must be smaller than unit_size_tokens"}
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := unitSize - overlap
	var units []model.EvidenceUnit

	for start := 0; ; start += step {
		end := start + unitSize
		if end > len(tokens) {
			end = len(tokens)
		}

		seq := len(units)
		units = append(units, model.EvidenceUnit{
			ID:            UnitID(sourceNovel, seq),
			SourceNovel:   sourceNovel,
			SequenceIndex: seq,
			Text:          strings.Join(tokens[start:end], " "),
			TokenCount:    end - start,
		})

		if end == len(tokens) {
			break
		}
	}

	return units, nil
}

// UnitID builds the deterministic identifier for one evidence unit.
// Deterministic IDs keep re-runs idempotent and let the embedding cache hit.
func UnitID(sourceNovel string, sequenceIndex int) string {
	return fmt.Sprintf("%s#%d", sourceNovel, sequenceIndex)
}
