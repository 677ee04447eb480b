package model

// EvidenceUnit is a bounded, overlapping segment of a source novel used as a
// retrieval and reasoning granule. Units are created in bulk when a novel is
// indexed and never mutated afterwards.
type EvidenceUnit struct {
	ID            string `json:"id"`
	SourceNovel   string `json:"source_novel"`
	SequenceIndex int    `json:"sequence_index"` // strictly increasing per novel
	Text          string `json:"text"`
	TokenCount    int    `json:"token_count"`
}

// RetrievedUnit pairs an evidence unit with its similarity to a claim.
type RetrievedUnit struct {
	Unit       EvidenceUnit `json:"unit"`
	Similarity float32      `json:"similarity"`
}
