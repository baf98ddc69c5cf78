// Package manuscript loads, edits, and saves structured manuscript documents.
package manuscript

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is an in-memory manuscript: an ordered sequence of paragraphs
// whose plain text can be read and replaced. Everything outside the visible
// text survives a save unchanged.
type Document interface {
	// Len returns the number of paragraphs.
	Len() int
	// Text returns the plain text of paragraph i, trimmed of surrounding
	// whitespace.
	Text(i int) string
	// Heading reports whether paragraph i is styled as a heading.
	Heading(i int) bool
	// SetText replaces the visible text of paragraph i. Paragraph-level
	// formatting is kept; if the inner run structure cannot be preserved
	// the paragraph degrades to a single run carrying the new text.
	SetText(i int, text string)
	// Save writes the whole document to path.
	Save(path string) error
}

// Store opens a document from a file path.
type Store interface {
	Open(path string) (Document, error)
}

// SupportedExtensions lists file extensions this tool can edit.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// ForFile returns the appropriate store for a filename.
func ForFile(filename string) (Store, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DocxStore{}, nil
	case ".md", ".markdown":
		return &MarkdownStore{}, nil
	case ".html", ".htm":
		return &HTMLStore{}, nil
	case ".pdf":
		return nil, fmt.Errorf("pdf is read-only: cannot save an edited copy")
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
