package manuscript

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// memDoc is an in-memory Document for tests.
type memDoc struct {
	texts    []string
	headings map[int]bool
	saved    string
}

func newMemDoc(texts ...string) *memDoc {
	return &memDoc{texts: texts, headings: map[int]bool{}}
}

func (d *memDoc) Len() int               { return len(d.texts) }
func (d *memDoc) Text(i int) string      { return strings.TrimSpace(d.texts[i]) }
func (d *memDoc) Heading(i int) bool     { return d.headings[i] }
func (d *memDoc) SetText(i int, s string) { d.texts[i] = s }
func (d *memDoc) Save(path string) error { d.saved = path; return nil }

func TestFindBody(t *testing.T) {
	doc := newMemDoc(
		"Abstract",
		"This paper studies feline posture.",
		"Introduction",
		"Teh cat sat.",
		"References",
		"[1] Cat, A. (2020).",
	)

	body, err := FindBody(doc)
	if err != nil {
		t.Fatalf("FindBody: %v", err)
	}
	if body.Start != 3 || body.End != 4 {
		t.Errorf("body = [%d, %d), want [3, 4)", body.Start, body.End)
	}
	if body.Abstract != 1 {
		t.Errorf("abstract paragraph = %d, want 1", body.Abstract)
	}

	idx := body.Editable(doc, EditableOptions{})
	if !reflect.DeepEqual(idx, []int{3}) {
		t.Errorf("editable = %v, want [3]", idx)
	}
	if doc.Text(3) != "Teh cat sat." {
		t.Errorf("editable paragraph text = %q", doc.Text(3))
	}
}

func TestFindBodyNumberedAndCasedHeadings(t *testing.T) {
	doc := newMemDoc(
		"ABSTRACT",
		"Summary text.",
		"1. INTRODUCTION",
		"Body paragraph.",
		"6. References",
		"[1] ...",
	)
	body, err := FindBody(doc)
	if err != nil {
		t.Fatalf("FindBody: %v", err)
	}
	if body.Start != 3 || body.End != 4 {
		t.Errorf("body = [%d, %d), want [3, 4)", body.Start, body.End)
	}
}

func TestFindBodyBibliography(t *testing.T) {
	doc := newMemDoc("Abstract", "A.", "Introduction", "B.", "Bibliography")
	if _, err := FindBody(doc); err != nil {
		t.Fatalf("FindBody: %v", err)
	}
}

func TestFindBodyMissingAnchors(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  error
	}{
		{"no abstract", []string{"Introduction", "B.", "References"}, ErrNoAbstract},
		{"no introduction", []string{"Abstract", "A.", "References"}, ErrNoIntroduction},
		{"no references", []string{"Abstract", "A.", "Introduction", "B."}, ErrNoReferences},
		{"out of order", []string{"Introduction", "Abstract", "A.", "References"}, ErrAnchorOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindBody(newMemDoc(tt.texts...))
			if !errors.Is(err, tt.want) {
				t.Errorf("FindBody error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditableSkipsHeadings(t *testing.T) {
	doc := newMemDoc(
		"Abstract",
		"Summary.",
		"Introduction",
		"First body paragraph with enough words to pass any heuristic test here.",
		"2. Methods",
		"Second body paragraph, also clearly prose with several words in it.",
		"Results",
		"References",
	)
	doc.headings[6] = true // styled heading without a number

	body, err := FindBody(doc)
	if err != nil {
		t.Fatalf("FindBody: %v", err)
	}
	idx := body.Editable(doc, EditableOptions{})
	if !reflect.DeepEqual(idx, []int{3, 5}) {
		t.Errorf("editable = %v, want [3 5]", idx)
	}
}

func TestEditableIncludeAbstract(t *testing.T) {
	doc := newMemDoc("Abstract", "Summary paragraph.", "Introduction", "Body.", "References")
	body, err := FindBody(doc)
	if err != nil {
		t.Fatalf("FindBody: %v", err)
	}

	got := body.Editable(doc, EditableOptions{IncludeAbstract: true})
	if !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("editable = %v, want [1 3]", got)
	}
}

func TestEditableSkipShortLines(t *testing.T) {
	doc := newMemDoc(
		"Abstract", "Summary.",
		"Introduction",
		"Experimental Setup",
		"A long prose paragraph. It has two sentences and plenty of words in total.",
		"References",
	)
	body, err := FindBody(doc)
	if err != nil {
		t.Fatalf("FindBody: %v", err)
	}

	// Default: short unnumbered lines are still edited.
	got := body.Editable(doc, EditableOptions{})
	if !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("editable = %v, want [3 4]", got)
	}

	got = body.Editable(doc, EditableOptions{SkipShortLines: true})
	if !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("editable with SkipShortLines = %v, want [4]", got)
	}
}

func TestLooksLikeHeading(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"2.1 Results", true},
		{"3 Discussion", true},
		{"Experimental Setup", true},
		{"", false},
		{"This sentence is long enough, with many words, to count as prose. Truly.", false},
		{"Short. Two. Dots.", false},
	}
	for _, tt := range tests {
		if got := LooksLikeHeading(tt.text); got != tt.want {
			t.Errorf("LooksLikeHeading(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		want    any
		wantErr bool
	}{
		{"paper.docx", &DocxStore{}, false},
		{"paper.md", &MarkdownStore{}, false},
		{"paper.markdown", &MarkdownStore{}, false},
		{"paper.html", &HTMLStore{}, false},
		{"PAPER.HTM", &HTMLStore{}, false},
		{"paper.pdf", nil, true},
		{"paper.txt", nil, true},
	}
	for _, tt := range tests {
		store, err := ForFile(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && reflect.TypeOf(store) != reflect.TypeOf(tt.want) {
			t.Errorf("ForFile(%q) = %T, want %T", tt.name, store, tt.want)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.docx") || !IsSupportedExtension("a.MD") {
		t.Error("expected docx and md to be supported")
	}
	if IsSupportedExtension("a.pdf") || IsSupportedExtension("a") {
		t.Error("pdf and extensionless names are not editable")
	}
}
