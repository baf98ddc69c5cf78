package manuscript

import (
	"errors"
	"regexp"
	"strings"
)

// Section anchors. Numbered headings ("3. Introduction", "2.1 References")
// are tolerated; matching is case-insensitive.
var (
	abstractRe = regexp.MustCompile(`(?i)^abstract$`)
	introRe    = regexp.MustCompile(`(?i)^(?:\d+(?:\.\d+)*[.)]?\s*)?introduction$`)
	refsRe     = regexp.MustCompile(`(?i)^\d*\.?\s*(?:references|bibliography)$`)

	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\w+`)
)

var (
	ErrNoAbstract     = errors.New(`missing "Abstract" heading`)
	ErrNoIntroduction = errors.New(`missing "Introduction" heading`)
	ErrNoReferences   = errors.New(`missing "References" heading`)
	ErrAnchorOrder    = errors.New("section headings out of order")
)

// Body bounds the editable region of a manuscript. Paragraphs in
// [Start, End) sit between the Introduction and References headings;
// Abstract is the index of the abstract paragraph, or -1 if none.
type Body struct {
	Abstract int
	Start    int
	End      int
}

// FindBody locates the three required section anchors and returns the
// editable body. The anchors themselves are never part of the body.
func FindBody(doc Document) (Body, error) {
	abstract, intro, refs := -1, -1, -1
	for i := 0; i < doc.Len(); i++ {
		text := strings.TrimSpace(doc.Text(i))
		switch {
		case abstract == -1 && abstractRe.MatchString(text):
			abstract = i
		case intro == -1 && introRe.MatchString(text):
			intro = i
		case refs == -1 && refsRe.MatchString(text):
			refs = i
		}
	}

	if abstract == -1 {
		return Body{}, ErrNoAbstract
	}
	if intro == -1 {
		return Body{}, ErrNoIntroduction
	}
	if refs == -1 {
		return Body{}, ErrNoReferences
	}
	if abstract >= intro || intro >= refs {
		return Body{}, ErrAnchorOrder
	}

	b := Body{Abstract: -1, Start: intro + 1, End: refs}
	// The abstract text is the first non-empty paragraph after its heading.
	for i := abstract + 1; i < intro; i++ {
		if strings.TrimSpace(doc.Text(i)) != "" {
			b.Abstract = i
			break
		}
	}
	return b, nil
}

// EditableOptions tunes which paragraphs of the body are selected for
// correction.
type EditableOptions struct {
	// IncludeAbstract also selects the abstract paragraph.
	IncludeAbstract bool
	// SkipShortLines treats short dot-free lines inside the body as
	// unnumbered section titles and leaves them alone.
	SkipShortLines bool
}

// Editable returns the indexes of paragraphs selected for correction, in
// document order. Heading-styled paragraphs are never selected.
func (b Body) Editable(doc Document, opts EditableOptions) []int {
	var idx []int
	if opts.IncludeAbstract && b.Abstract >= 0 && !doc.Heading(b.Abstract) {
		idx = append(idx, b.Abstract)
	}
	for i := b.Start; i < b.End; i++ {
		if doc.Heading(i) {
			continue
		}
		text := doc.Text(i)
		if numberedHeadingRe.MatchString(strings.TrimSpace(text)) {
			continue
		}
		if opts.SkipShortLines && LooksLikeHeading(text) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// LooksLikeHeading reports whether text reads like a section title rather
// than body prose: a numbered heading ("2.1 Results") or a short line with
// at most one sentence.
func LooksLikeHeading(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if numberedHeadingRe.MatchString(text) {
		return true
	}
	if len(strings.Fields(text)) < 10 && strings.Count(text, ".") <= 1 {
		return true
	}
	return false
}
