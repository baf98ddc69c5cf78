package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kdurfey/redline/internal/correct"
	"github.com/kdurfey/redline/internal/manuscript"
)

// ProgressFunc is called after each paragraph completes.
type ProgressFunc func(done, total int)

// Editor sends selected paragraphs to the corrector and applies
// replacements in place, always by original index, so output order is
// unaffected by completion order.
type Editor struct {
	corrector     correct.Corrector
	stats         *correct.Stats
	log           *slog.Logger
	progress      io.Writer
	onProgress    ProgressFunc
	maxConcurrent int
	maxRetries    int
}

func NewEditor(c correct.Corrector, stats *correct.Stats, log *slog.Logger, progress io.Writer, maxConcurrent, maxRetries int) *Editor {
	if progress == nil {
		progress = io.Discard
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Editor{
		corrector:     c,
		stats:         stats,
		log:           log,
		progress:      progress,
		maxConcurrent: maxConcurrent,
		maxRetries:    maxRetries,
	}
}

// SetProgressFunc registers a callback for per-paragraph progress.
func (e *Editor) SetProgressFunc(fn ProgressFunc) { e.onProgress = fn }

// Report summarizes one editing pass.
type Report struct {
	Total   int      `json:"total"`
	Edited  int      `json:"edited"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Edit corrects the given paragraphs of doc. A failed call leaves its
// paragraph unmodified; the failure is logged and the pass continues.
func (e *Editor) Edit(ctx context.Context, doc manuscript.Document, paragraphs []int) Report {
	total := len(paragraphs)
	rep := Report{Total: total}
	if total == 0 {
		return rep
	}

	// Snapshot texts up front so goroutines never touch the document.
	originals := make([]string, total)
	for pos, idx := range paragraphs {
		originals[pos] = doc.Text(idx)
	}

	type result struct {
		pos     int
		text    string
		skipped bool
		err     error
	}
	results := make(chan result, total)
	sem := make(chan struct{}, e.maxConcurrent)

	for pos := range paragraphs {
		sem <- struct{}{}
		go func(pos int) {
			defer func() { <-sem }()
			text := originals[pos]
			if correct.ShouldSkip(text) {
				results <- result{pos: pos, skipped: true}
				return
			}
			edited, err := e.correctWithRetry(ctx, text)
			results <- result{pos: pos, text: edited, err: err}
		}(pos)
	}

	done := 0
	for range paragraphs {
		r := <-results
		done++
		fmt.Fprintf(e.progress, "Processed paragraph %d/%d\n", done, total)
		if e.onProgress != nil {
			e.onProgress(done, total)
		}

		idx := paragraphs[r.pos]
		switch {
		case r.err != nil:
			rep.Failed++
			rep.Errors = append(rep.Errors, fmt.Sprintf("paragraph %d: %s", idx, r.err))
			e.log.Error("correction failed, paragraph left unmodified", "paragraph", idx, "error", r.err)
		case r.skipped:
			rep.Skipped++
		case r.text == "" || r.text == originals[r.pos]:
			rep.Skipped++
		default:
			doc.SetText(idx, r.text)
			rep.Edited++
		}
	}
	return rep
}

func (e *Editor) correctWithRetry(ctx context.Context, text string) (string, error) {
	for attempt := 0; ; attempt++ {
		start := time.Now()
		out, err := e.corrector.Correct(ctx, text)
		if e.stats != nil {
			e.stats.Record(time.Since(start).Milliseconds())
		}
		if err == nil || attempt >= e.maxRetries || !IsRetryable(err) {
			return out, err
		}
		e.log.Warn("retryable correction error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
