// Package redline builds track-changes artifacts from an original and an
// edited copy of the same manuscript.
package redline

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies one span of an edit script.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Edit is one span of an edit script between two paragraph texts.
type Edit struct {
	Op   Op
	Text string
}

// Diff computes an edit script between two paragraph texts, cleaned up so
// spans align with word boundaries where possible.
func Diff(oldText, newText string) []Edit {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	edits := make([]Edit, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			edits = append(edits, Edit{Op: OpEqual, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			edits = append(edits, Edit{Op: OpInsert, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			edits = append(edits, Edit{Op: OpDelete, Text: d.Text})
		}
	}
	return edits
}
