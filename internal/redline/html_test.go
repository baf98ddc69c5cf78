package redline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTMLCompare(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.html",
		`<html><body><h1>Introduction</h1><p id="a">Teh cat sat.</p><p>Unchanged text.</p></body></html>`)
	edited := writeFile(t, dir, "edited.html",
		`<html><body><h1>Introduction</h1><p id="a">The cat sat.</p><p>Unchanged text.</p></body></html>`)
	out := filepath.Join(dir, "redline.html")

	if err := (&HTMLComparer{}).Compare(orig, edited, out); err != nil {
		t.Fatalf("Compare: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if !strings.Contains(got, "<del>") || !strings.Contains(got, "<ins>") {
		t.Fatalf("no ins/del marks in redline:\n%s", got)
	}
	if !strings.Contains(got, `id="a"`) {
		t.Errorf("paragraph attributes lost:\n%s", got)
	}
	if !strings.Contains(got, "Unchanged text.") || strings.Contains(got, "<del>Unchanged") {
		t.Errorf("unchanged paragraph was rewritten:\n%s", got)
	}
}

func TestHTMLCompareParagraphMismatch(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.html", `<html><body><p>one</p></body></html>`)
	edited := writeFile(t, dir, "edited.html", `<html><body><p>one</p><p>two</p></body></html>`)

	err := (&HTMLComparer{}).Compare(orig, edited, filepath.Join(dir, "out.html"))
	if err == nil {
		t.Fatal("expected paragraph count mismatch error")
	}
}
