package model

// Claim represents an atomic, independently-checkable assertion extracted
// from a backstory
type Claim struct {
	ID          string `json:"id"`
	BackstoryID string `json:"backstory_id"`
	Text        string `json:"text"`
	Order       int    `json:"order"` // sentence position in the backstory, traceability only
}

// Backstory is a hypothetical character history to be checked against one novel
type Backstory struct {
	ID       string  `json:"id"`
	BookName string  `json:"book_name"`
	Text     string  `json:"text"`
	Claims   []Claim `json:"claims,omitempty"`
}
