package manuscript

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownStore handles Markdown files using goldmark.
//
// Paragraphs map to top-level blocks; edits are spliced back into the
// original source by byte offset, so untouched markup survives verbatim.
type MarkdownStore struct{}

func (s *MarkdownStore) Open(path string) (Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	d := &markdownDocument{src: src}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		lines := n.Lines()
		if lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		stop := lines.At(lines.Len() - 1).Stop
		// Line segments may include the trailing newline; keep it out of
		// the replaceable range so splices preserve block separation.
		for stop > start && (src[stop-1] == '\n' || src[stop-1] == '\r') {
			stop--
		}
		_, heading := n.(*ast.Heading)
		d.blocks = append(d.blocks, &mdBlock{
			start:   start,
			stop:    stop,
			heading: heading,
		})
	}
	return d, nil
}

type mdBlock struct {
	start, stop int // byte offsets into the source
	heading     bool
	edited      bool
	text        string // replacement text, valid when edited
}

type markdownDocument struct {
	src    []byte
	blocks []*mdBlock
}

func (d *markdownDocument) Len() int { return len(d.blocks) }

func (d *markdownDocument) Text(i int) string {
	b := d.blocks[i]
	if b.edited {
		return b.text
	}
	return strings.TrimSpace(string(d.src[b.start:b.stop]))
}

func (d *markdownDocument) Heading(i int) bool { return d.blocks[i].heading }

func (d *markdownDocument) SetText(i int, text string) {
	b := d.blocks[i]
	b.text = text
	b.edited = true
}

func (d *markdownDocument) Save(path string) error {
	var buf bytes.Buffer
	pos := 0
	for _, b := range d.blocks {
		if !b.edited {
			continue
		}
		buf.Write(d.src[pos:b.start])
		buf.WriteString(b.text)
		pos = b.stop
	}
	buf.Write(d.src[pos:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
