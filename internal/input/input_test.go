package input

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/continuity/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNovel_PlainText(t *testing.T) {
	path := writeFile(t, "dracula.txt", "Jonathan Harker kept a journal.")

	book, text, err := LoadNovel(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if book != "dracula" {
		t.Errorf("book = %q, want dracula", book)
	}
	if !strings.Contains(text, "journal") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestLoadNovel_HTMLStripsMarkup(t *testing.T) {
	path := writeFile(t, "book.html",
		`<html><head><script>var x = 1;</script><style>p{}</style></head>`+
			`<body><p>Alice was born in Paris.</p></body></html>`)

	_, text, err := LoadNovel(path, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Alice was born in Paris.") {
		t.Errorf("visible text missing: %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "p{}") {
		t.Errorf("script or style leaked into text: %q", text)
	}
}

func TestLoadNovel_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "   \n\t ")

	_, _, err := LoadNovel(path, "")
	var dataErr *model.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestLoadBackstory(t *testing.T) {
	path := writeFile(t, "bs-7.txt", "Alice was born in Tokyo.")

	bs, err := LoadBackstory(path, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if bs.ID != "bs-7" || bs.BookName != "alice" {
		t.Errorf("unexpected backstory identity: %+v", bs)
	}
}

func TestReadLabeled(t *testing.T) {
	csvData := "id,book_name,content,label\n" +
		"bs-1,dracula,Harker never left England.,INCONSISTENT\n" +
		"bs-2,dracula,Harker kept a journal.,consistent\n" +
		"bs-3,dracula,Harker travelled to Transylvania.,1\n" +
		"bs-4,dracula,Harker never wrote anything.,0\n"

	examples, err := ReadLabeled(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 4 {
		t.Fatalf("expected 4 examples, got %d", len(examples))
	}
	want := []model.VerdictLabel{
		model.VerdictInconsistent,
		model.VerdictConsistent,
		model.VerdictConsistent,
		model.VerdictInconsistent,
	}
	for i, ex := range examples {
		if ex.Label != want[i] {
			t.Errorf("example %d label = %s, want %s", i, ex.Label, want[i])
		}
	}
}

func TestReadLabeled_BadLabel(t *testing.T) {
	csvData := "bs-1,dracula,Some text.,MAYBE\n"

	_, err := ReadLabeled(strings.NewReader(csvData))
	var dataErr *model.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestReadUnlabeled_GeneratesMissingIDs(t *testing.T) {
	csvData := "id,book_name,content\n" +
		",dracula,Harker kept a journal.\n"

	backstories, err := ReadUnlabeled(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(backstories) != 1 {
		t.Fatalf("expected 1 backstory, got %d", len(backstories))
	}
	if backstories[0].ID == "" {
		t.Error("missing id was not generated")
	}
}

func TestReadUnlabeled_EmptyBookName(t *testing.T) {
	_, err := ReadUnlabeled(strings.NewReader("bs-1,,Some text.\n"))
	var dataErr *model.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestWriteVerdicts(t *testing.T) {
	var buf bytes.Buffer
	err := WriteVerdicts(&buf, []VerdictRecord{
		{BackstoryID: "bs-1", Label: model.VerdictConsistent},
		{BackstoryID: "bs-2", Err: errors.New("index build failed")},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	want := "id,label\nbs-1,CONSISTENT\nbs-2,ERROR\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExtractVisibleText_NestedSkips(t *testing.T) {
	text, err := ExtractVisibleText(
		`<div>kept <noscript><p>hidden</p></noscript>visible</div>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("noscript subtree leaked: %q", text)
	}
	if !strings.Contains(text, "kept") || !strings.Contains(text, "visible") {
		t.Errorf("visible text missing: %q", text)
	}
}
