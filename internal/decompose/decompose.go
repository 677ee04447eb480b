// Package decompose splits a backstory into atomic, independently-checkable
// claims.
package decompose

import (
	"fmt"
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/ppiankov/continuity/internal/model"
)

// minClaimLen filters out fragments too short to assert anything.
const minClaimLen = 6

// Decompose splits backstory text into ordered sentence-level claims. The
// split is a best-effort syntactic policy: compound constraints spanning
// sentences stay split. An empty backstory yields an empty claim sequence.
func Decompose(backstoryID, text string) ([]model.Claim, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenize backstory: %w", err)
	}

	var claims []model.Claim
	for _, sent := range doc.Sentences() {
		s := strings.TrimSpace(sent.Text)
		if len([]rune(s)) < minClaimLen {
			continue
		}
		claims = append(claims, model.Claim{
			ID:          ClaimID(backstoryID, len(claims)),
			BackstoryID: backstoryID,
			Text:        s,
			Order:       len(claims),
		})
	}

	return claims, nil
}

// ClaimID builds the deterministic identifier for one claim.
func ClaimID(backstoryID string, order int) string {
	return fmt.Sprintf("%s/claim-%d", backstoryID, order)
}
