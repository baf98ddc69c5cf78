package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kdurfey/redline/internal/manuscript"
	"github.com/kdurfey/redline/internal/redline"
)

// RunInput describes one end-to-end editing run.
type RunInput struct {
	InputPath   string
	CleanPath   string
	RedlinePath string // empty disables the track-changes artifact
	Author      string

	EditAbstract   bool
	SkipShortLines bool
}

// Run executes the full pipeline: load the manuscript, locate the editable
// body, correct it, save the clean copy, and build the redline.
//
// Anchor and save failures are fatal. A comparison failure is logged and
// recorded in the report but does not invalidate the saved clean output.
func Run(ctx context.Context, ed *Editor, log *slog.Logger, in RunInput) (Report, error) {
	if _, err := os.Stat(in.InputPath); err != nil {
		return Report{}, fmt.Errorf("input document: %w", err)
	}
	removeStale(log, in.CleanPath, in.RedlinePath)

	store, err := manuscript.ForFile(in.InputPath)
	if err != nil {
		return Report{}, err
	}
	doc, err := store.Open(in.InputPath)
	if err != nil {
		return Report{}, fmt.Errorf("load document: %w", err)
	}

	body, err := manuscript.FindBody(doc)
	if err != nil {
		return Report{}, fmt.Errorf("locate editable body: %w", err)
	}
	paragraphs := body.Editable(doc, manuscript.EditableOptions{
		IncludeAbstract: in.EditAbstract,
		SkipShortLines:  in.SkipShortLines,
	})
	log.Info("located editable body",
		"paragraphs", len(paragraphs),
		"start", body.Start,
		"end", body.End,
	)

	rep := ed.Edit(ctx, doc, paragraphs)

	if err := doc.Save(in.CleanPath); err != nil {
		return rep, fmt.Errorf("save clean output: %w", err)
	}
	log.Info("clean output saved",
		"path", in.CleanPath,
		"edited", rep.Edited,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
	)

	if in.RedlinePath != "" {
		cmp, err := redline.ForFile(in.InputPath, in.Author)
		if err == nil {
			err = cmp.Compare(in.InputPath, in.CleanPath, in.RedlinePath)
		}
		if err != nil {
			log.Error("redline comparison failed, clean output kept", "error", err)
			rep.Errors = append(rep.Errors, fmt.Sprintf("redline: %s", err))
		} else {
			log.Info("redline saved", "path", in.RedlinePath)
		}
	}

	return rep, nil
}

// removeStale deletes leftover output files from a previous run.
func removeStale(log *slog.Logger, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("could not remove stale output", "path", path, "error", err)
		}
	}
}
