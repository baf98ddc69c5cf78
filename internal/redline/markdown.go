package redline

import (
	"fmt"
	"strings"

	"github.com/kdurfey/redline/internal/manuscript"
)

// MarkdownComparer emits CriticMarkup: deletions as {--text--} and
// insertions as {++text++}, spliced into a copy of the original source.
type MarkdownComparer struct{}

func (c *MarkdownComparer) Compare(originalPath, editedPath, outPath string) error {
	store := &manuscript.MarkdownStore{}

	orig, err := store.Open(originalPath)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	edited, err := store.Open(editedPath)
	if err != nil {
		return fmt.Errorf("open edited: %w", err)
	}
	if orig.Len() != edited.Len() {
		return fmt.Errorf("paragraph count mismatch: %d vs %d", orig.Len(), edited.Len())
	}

	for i := 0; i < orig.Len(); i++ {
		before := orig.Text(i)
		after := edited.Text(i)
		if before == after {
			continue
		}
		orig.SetText(i, criticMarkup(Diff(before, after)))
	}

	if err := orig.Save(outPath); err != nil {
		return fmt.Errorf("save redline: %w", err)
	}
	return nil
}

func criticMarkup(edits []Edit) string {
	var b strings.Builder
	for _, e := range edits {
		switch e.Op {
		case OpEqual:
			b.WriteString(e.Text)
		case OpDelete:
			b.WriteString("{--")
			b.WriteString(e.Text)
			b.WriteString("--}")
		case OpInsert:
			b.WriteString("{++")
			b.WriteString(e.Text)
			b.WriteString("++}")
		}
	}
	return b.String()
}
