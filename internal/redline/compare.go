package redline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Comparer builds a track-changes document from an original and an edited
// copy. Both inputs must have the same paragraph count; the clean writer
// guarantees that for documents it produced.
type Comparer interface {
	Compare(originalPath, editedPath, outPath string) error
}

// ForFile returns the appropriate comparer for a filename.
func ForFile(filename string, author string) (Comparer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DocxComparer{Author: author}, nil
	case ".md", ".markdown":
		return &MarkdownComparer{}, nil
	case ".html", ".htm":
		return &HTMLComparer{}, nil
	default:
		return nil, fmt.Errorf("no comparer for file extension: %s", ext)
	}
}
