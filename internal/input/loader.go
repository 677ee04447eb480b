// Package input loads novels and backstories from local files and CSV
// datasets.
package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/continuity/internal/model"
)

// LoadNovel reads a novel from a plain-text or HTML file. The book name is
// derived from the file name unless given explicitly.
func LoadNovel(path, bookName string) (string, string, error) {
	text, err := loadText(path)
	if err != nil {
		return "", "", err
	}
	if bookName == "" {
		bookName = baseName(path)
	}
	return bookName, text, nil
}

// LoadBackstory reads a backstory from a plain-text or HTML file.
func LoadBackstory(path, bookName string) (model.Backstory, error) {
	text, err := loadText(path)
	if err != nil {
		return model.Backstory{}, err
	}
	return model.Backstory{
		ID:       baseName(path),
		BookName: bookName,
		Text:     text,
	}, nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	if isHTML(path, text) {
		extracted, err := ExtractVisibleText(text)
		if err != nil {
			return "", &model.DataError{Item: path, Reason: "invalid HTML: " + err.Error()}
		}
		text = extracted
	}

	if strings.TrimSpace(text) == "" {
		return "", &model.DataError{Item: path, Reason: "file contains no text"}
	}
	return text, nil
}

func isHTML(path, content string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractVisibleText strips markup and returns the visible text of an HTML
// document, skipping script, style, noscript and iframe subtrees.
func ExtractVisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
