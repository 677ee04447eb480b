package segment

import (
	"fmt"
	"strings"
	"testing"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSegment_UnitCount(t *testing.T) {
	tests := []struct {
		tokens   int
		unitSize int
		overlap  int
		want     int
	}{
		{tokens: 10, unitSize: 4, overlap: 1, want: 3},
		{tokens: 10, unitSize: 4, overlap: 0, want: 3},
		{tokens: 12, unitSize: 4, overlap: 0, want: 3},
		{tokens: 3, unitSize: 4, overlap: 1, want: 1},
		{tokens: 4, unitSize: 4, overlap: 1, want: 1},
		{tokens: 800, unitSize: 800, overlap: 100, want: 1},
		{tokens: 1500, unitSize: 800, overlap: 100, want: 2},
	}

	for _, tt := range tests {
		units, err := Segment("novel", wordText(tt.tokens), tt.unitSize, tt.overlap)
		if err != nil {
			t.Fatalf("Segment(%d tokens, size=%d, overlap=%d): %v", tt.tokens, tt.unitSize, tt.overlap, err)
		}
		if len(units) != tt.want {
			t.Errorf("Segment(%d tokens, size=%d, overlap=%d) = %d units, want %d",
				tt.tokens, tt.unitSize, tt.overlap, len(units), tt.want)
		}

		// ceil((n - overlap) / (unitSize - overlap))
		step := tt.unitSize - tt.overlap
		formula := (tt.tokens - tt.overlap + step - 1) / step
		if formula < 1 {
			formula = 1
		}
		if len(units) != formula {
			t.Errorf("unit count %d disagrees with formula %d for n=%d size=%d overlap=%d",
				len(units), formula, tt.tokens, tt.unitSize, tt.overlap)
		}
	}
}

func TestSegment_ReconstructsText(t *testing.T) {
	text := wordText(53)
	unitSize, overlap := 10, 3

	units, err := Segment("novel", text, unitSize, overlap)
	if err != nil {
		t.Fatal(err)
	}

	// Concatenating non-overlapping cores (the full first unit, then each
	// subsequent unit minus its leading overlap tokens) must reconstruct the
	// whitespace-normalized input.
	var parts []string
	for i, u := range units {
		words := strings.Fields(u.Text)
		if i > 0 {
			words = words[overlap:]
		}
		parts = append(parts, words...)
	}

	if got, want := strings.Join(parts, " "), text; got != want {
		t.Errorf("reconstructed text mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestSegment_SequenceStrictlyIncreasing(t *testing.T) {
	units, err := Segment("novel", wordText(100), 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, u := range units {
		if u.SequenceIndex != i {
			t.Errorf("unit %d has sequence_index %d", i, u.SequenceIndex)
		}
		if u.ID != UnitID("novel", i) {
			t.Errorf("unit %d has unexpected ID %q", i, u.ID)
		}
	}
}

func TestSegment_ShortText(t *testing.T) {
	units, err := Segment("novel", "only three words", 800, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 {
		t.Fatalf("expected exactly one unit for short text, got %d", len(units))
	}
	if units[0].TokenCount != 3 {
		t.Errorf("expected token_count 3, got %d", units[0].TokenCount)
	}
}

func TestSegment_EmptyText(t *testing.T) {
	units, err := Segment("novel", "   ", 800, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 0 {
		t.Errorf("expected no units for empty text, got %d", len(units))
	}
}

func TestSegment_InvalidConfig(t *testing.T) {
	cases := []struct {
		name     string
		unitSize int
		overlap  int
	}{
		{"zero unit size", 0, 0},
		{"negative unit size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals unit size", 10, 10},
		{"overlap exceeds unit size", 10, 12},
	}

	for _, tc := range cases {
		if _, err := Segment("novel", "some text here", tc.unitSize, tc.overlap); err == nil {
			t.Errorf("%s: expected configuration error", tc.name)
		}
	}
}
