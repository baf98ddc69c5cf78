// Package correct calls a language-model service to copy-edit manuscript text.
package correct

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Corrector returns a corrected version of one paragraph of text.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
	Close()
}

// Paragraphs shorter than this are not worth a model call.
const minWords = 3

// ShouldSkip reports whether a paragraph should pass through unmodified
// without a model call.
func ShouldSkip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if len(strings.Fields(trimmed)) < minWords {
		return true
	}
	return false
}

// Postprocess cleans common model artifacts from a returned correction:
// surrounding whitespace, accidental code fences, and duplicated trailing
// punctuation.
func Postprocess(s string) string {
	s = stripCodeBlock(s)
	s = trailingDotsRe.ReplaceAllString(s, ".")
	return strings.TrimSpace(s)
}

var (
	codeBlockRe    = regexp.MustCompile("(?s)^```(?:[a-z]*)\\s*(.*?)\\s*```$")
	trailingDotsRe = regexp.MustCompile(`\.\.+$`)
)

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient provider failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}
