package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/continuity/internal/model"
)

// LabeledBackstory is one training example: a backstory with its ground-truth
// verdict.
type LabeledBackstory struct {
	Backstory model.Backstory
	Label     model.VerdictLabel
}

// ReadLabeled parses a training dataset with columns id, book_name, content,
// label. A header row is skipped when present. Rows with a missing book name
// or content are rejected; a missing id gets a generated one.
func ReadLabeled(r io.Reader) ([]LabeledBackstory, error) {
	rows, err := readRows(r, 4, []string{"id", "book_name", "content", "label"})
	if err != nil {
		return nil, err
	}

	examples := make([]LabeledBackstory, 0, len(rows))
	for i, row := range rows {
		bs, err := backstoryFromRow(i, row)
		if err != nil {
			return nil, err
		}

		label, err := parseLabel(row[3])
		if err != nil {
			return nil, &model.DataError{Item: bs.ID, Reason: err.Error()}
		}

		examples = append(examples, LabeledBackstory{Backstory: bs, Label: label})
	}
	return examples, nil
}

// ReadUnlabeled parses an evaluation dataset with columns id, book_name,
// content.
func ReadUnlabeled(r io.Reader) ([]model.Backstory, error) {
	rows, err := readRows(r, 3, []string{"id", "book_name", "content"})
	if err != nil {
		return nil, err
	}

	backstories := make([]model.Backstory, 0, len(rows))
	for i, row := range rows {
		bs, err := backstoryFromRow(i, row)
		if err != nil {
			return nil, err
		}
		backstories = append(backstories, bs)
	}
	return backstories, nil
}

// VerdictRecord is one output row. Err marks backstories that failed instead
// of producing a verdict.
type VerdictRecord struct {
	BackstoryID string
	Label       model.VerdictLabel
	Err         error
}

// WriteVerdicts emits the output dataset with columns id, label. Failed
// backstories are written with an ERROR label so the output stays aligned
// with the input.
func WriteVerdicts(w io.Writer, records []VerdictRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "label"}); err != nil {
		return err
	}

	for _, rec := range records {
		label := string(rec.Label)
		if rec.Err != nil {
			label = "ERROR"
		}
		if err := cw.Write([]string{rec.BackstoryID, label}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func readRows(r io.Reader, fields int, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &model.DataError{Item: "dataset", Reason: err.Error()}
	}
	if len(rows) > 0 && isHeader(rows[0], header) {
		rows = rows[1:]
	}
	return rows, nil
}

func isHeader(row, header []string) bool {
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return false
		}
	}
	return true
}

// parseLabel accepts the self-describing labels and the original datasets'
// numeric encoding (1 = consistent, 0 = inconsistent).
func parseLabel(raw string) (model.VerdictLabel, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CONSISTENT", "1", "TRUE":
		return model.VerdictConsistent, nil
	case "INCONSISTENT", "0", "FALSE":
		return model.VerdictInconsistent, nil
	default:
		return "", fmt.Errorf("unknown label %q", raw)
	}
}

func backstoryFromRow(rowIndex int, row []string) (model.Backstory, error) {
	id := strings.TrimSpace(row[0])
	if id == "" {
		id = uuid.NewString()
	}

	bookName := strings.TrimSpace(row[1])
	if bookName == "" {
		return model.Backstory{}, &model.DataError{
			Item:   fmt.Sprintf("row %d (id %s)", rowIndex+1, id),
			Reason: "book_name is empty",
		}
	}

	return model.Backstory{
		ID:       id,
		BookName: bookName,
		Text:     row[2],
	}, nil
}
