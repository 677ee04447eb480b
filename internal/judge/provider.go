// Package judge invokes an external LLM to classify the relation between one
// claim and one evidence unit. The judge is treated as an untrusted,
// possibly-unavailable remote capability: slow, rate-limited, transiently
// failing.
package judge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/continuity/internal/model"
)

// Provider defines the interface for relation judge backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Judge classifies the relation between a claim and one evidence unit.
	// The returned confidence is in [0,1].
	Judge(ctx context.Context, claimText, evidenceText string) (model.RelationLabel, float64, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

const systemPrompt = "You are a logical consistency checker. You answer with exactly one word: CONTRADICT, SUPPORT, or NEUTRAL, optionally followed by a confidence between 0 and 1."

// BuildPrompt constructs the strict evidence-grounded classification prompt.
// The judge must never invent facts beyond the provided evidence; when the
// evidence is insufficient the required answer is NEUTRAL.
func BuildPrompt(claimText, evidenceText string) string {
	return fmt.Sprintf(`You are a logical consistency checker.

Claim:
%s

Novel Evidence:
%s

Instructions:
- Use ONLY the provided evidence.
- Do NOT infer missing facts.
- If the evidence is insufficient, answer NEUTRAL.

Respond with exactly ONE word:
CONTRADICT, SUPPORT, or NEUTRAL`, claimText, evidenceText)
}

// ParseResponse extracts the relation label and optional confidence from a
// raw judge reply. Anything unrecognizable maps to NEUTRAL with zero
// confidence: an unsupported CONTRADICT or SUPPORT must never be invented.
func ParseResponse(raw string) (model.RelationLabel, float64) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return model.RelationNeutral, 0
	}

	label := model.RelationLabel(strings.Trim(fields[0], ".,:;!\"'"))
	if !label.Valid() {
		// Some models wrap the answer; take the first recognizable label.
		label = model.RelationNeutral
		for _, f := range fields {
			candidate := model.RelationLabel(strings.Trim(f, ".,:;!\"'"))
			if candidate.Valid() {
				label = candidate
				break
			}
		}
		if label == model.RelationNeutral {
			return model.RelationNeutral, 0
		}
	}

	confidence := defaultConfidence(label)
	if len(fields) > 1 {
		if c, err := strconv.ParseFloat(strings.Trim(fields[1], "()"), 64); err == nil && c >= 0 && c <= 1 {
			confidence = c
		}
	}

	return label, confidence
}

// defaultConfidence assigns full weight to a bare CONTRADICT or SUPPORT
// answer, so judges that cannot emit confidence still drive the conservative
// reduction.
func defaultConfidence(label model.RelationLabel) float64 {
	switch label {
	case model.RelationContradict, model.RelationSupport:
		return 1.0
	default:
		return 0
	}
}
