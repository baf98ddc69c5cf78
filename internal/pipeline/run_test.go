package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const runSampleMarkdown = `# Abstract

A summary of the work.

# Introduction

teh cat sat on the mat

# References

[1] Cat, A. (2020).
`

func writeRunInput(t *testing.T) (input, clean, redline string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "paper.md")
	if err := os.WriteFile(input, []byte(runSampleMarkdown), 0o600); err != nil {
		t.Fatal(err)
	}
	return input, filepath.Join(dir, "paper_edited.md"), filepath.Join(dir, "paper_redline.md")
}

func TestRunEndToEnd(t *testing.T) {
	input, clean, redlinePath := writeRunInput(t)
	fc := &fakeCorrector{fn: func(text string) (string, error) {
		return strings.Replace(text, "teh", "the", 1), nil
	}}
	ed := NewEditor(fc, nil, discardLogger(), io.Discard, 1, 0)

	rep, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath:   input,
		CleanPath:   clean,
		RedlinePath: redlinePath,
		Author:      "redline",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Edited != 1 {
		t.Fatalf("report = %+v", rep)
	}

	cleanData, err := os.ReadFile(clean)
	if err != nil {
		t.Fatalf("clean output missing: %v", err)
	}
	got := string(cleanData)
	if !strings.Contains(got, "the cat sat on the mat") {
		t.Errorf("clean output missing edit:\n%s", got)
	}
	if !strings.Contains(got, "# Abstract") || !strings.Contains(got, "[1] Cat, A. (2020).") {
		t.Errorf("clean output lost untouched content:\n%s", got)
	}

	redlineData, err := os.ReadFile(redlinePath)
	if err != nil {
		t.Fatalf("redline output missing: %v", err)
	}
	marked := string(redlineData)
	if !strings.Contains(marked, "{--") || !strings.Contains(marked, "{++") {
		t.Errorf("redline output has no change marks:\n%s", marked)
	}
}

func TestRunMissingAnchorIsFatal(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "paper.md")
	src := "# Abstract\n\nA summary.\n\n# Introduction\n\nbody paragraph of text\n"
	if err := os.WriteFile(input, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	clean := filepath.Join(dir, "clean.md")

	ed := NewEditor(&fakeCorrector{fn: upper}, nil, discardLogger(), io.Discard, 1, 0)
	_, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath: input,
		CleanPath: clean,
	})
	if err == nil {
		t.Fatal("expected error for missing References heading")
	}
	if _, statErr := os.Stat(clean); !os.IsNotExist(statErr) {
		t.Error("no output should be written when anchors are missing")
	}
}

func TestRunModelFailureKeepsOriginalText(t *testing.T) {
	input, clean, redlinePath := writeRunInput(t)
	fc := &fakeCorrector{fn: func(text string) (string, error) {
		return "", fmt.Errorf("connection refused")
	}}
	ed := NewEditor(fc, nil, discardLogger(), io.Discard, 1, 0)

	rep, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath:   input,
		CleanPath:   clean,
		RedlinePath: redlinePath,
		Author:      "redline",
	})
	if err != nil {
		t.Fatalf("Run should not fail outright: %v", err)
	}
	if rep.Failed != 1 || rep.Edited != 0 {
		t.Fatalf("report = %+v", rep)
	}

	cleanData, err := os.ReadFile(clean)
	if err != nil {
		t.Fatalf("clean output missing: %v", err)
	}
	if !strings.Contains(string(cleanData), "teh cat sat on the mat") {
		t.Errorf("failed paragraph should keep its original text:\n%s", cleanData)
	}
}

func TestRunWithoutRedline(t *testing.T) {
	input, clean, redlinePath := writeRunInput(t)
	ed := NewEditor(&fakeCorrector{fn: upper}, nil, discardLogger(), io.Discard, 1, 0)

	_, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath: input,
		CleanPath: clean,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, statErr := os.Stat(redlinePath); !os.IsNotExist(statErr) {
		t.Error("redline should not be written when its path is empty")
	}
}

func TestRunRemovesStaleOutputs(t *testing.T) {
	input, clean, redlinePath := writeRunInput(t)
	if err := os.WriteFile(clean, []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}

	ed := NewEditor(&fakeCorrector{fn: upper}, nil, discardLogger(), io.Discard, 1, 0)
	if _, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath:   input,
		CleanPath:   clean,
		RedlinePath: redlinePath,
		Author:      "redline",
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" {
		t.Error("stale clean output survived")
	}
}

func TestRunMissingInput(t *testing.T) {
	ed := NewEditor(&fakeCorrector{fn: upper}, nil, discardLogger(), io.Discard, 1, 0)
	_, err := Run(context.Background(), ed, discardLogger(), RunInput{
		InputPath: filepath.Join(t.TempDir(), "absent.md"),
		CleanPath: filepath.Join(t.TempDir(), "clean.md"),
	})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}
