package manuscript

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocxStore handles .docx files via go-docx.
type DocxStore struct{}

func (s *DocxStore) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	file, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	d := &docxDocument{file: file}
	for _, item := range file.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			d.paras = append(d.paras, para)
		}
	}
	return d, nil
}

// docxDocument wraps a parsed docx package. Only top-level body paragraphs
// are exposed; tables and footnotes pass through untouched on save.
type docxDocument struct {
	file  *docx.Docx
	paras []*docx.Paragraph
}

func (d *docxDocument) Len() int { return len(d.paras) }

func (d *docxDocument) Text(i int) string {
	return paragraphText(d.paras[i])
}

func (d *docxDocument) Heading(i int) bool {
	return headingLevel(d.paras[i]) > 0
}

// SetText replaces the paragraph's visible text. The first text-bearing run
// keeps its formatting and receives the whole replacement; remaining
// text-bearing runs are dropped. Runs without text (drawings, tabs) and
// non-run children (hyperlinks) are kept in place.
func (d *docxDocument) SetText(i int, text string) {
	para := d.paras[i]

	var target *docx.Text
	kept := para.Children[:0]
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			kept = append(kept, child)
			continue
		}
		t := firstRunText(run)
		if t == nil {
			kept = append(kept, run)
			continue
		}
		if target == nil {
			target = t
			dropExtraTexts(run, t)
			kept = append(kept, run)
		}
	}
	para.Children = kept

	if target != nil {
		target.Text = text
		return
	}
	para.AddText(text)
}

func (d *docxDocument) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	if _, err := d.file.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write docx: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func firstRunText(run *docx.Run) *docx.Text {
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			return t
		}
	}
	return nil
}

// dropExtraTexts removes every text child of run except keep.
func dropExtraTexts(run *docx.Run, keep *docx.Text) {
	kept := run.Children[:0]
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok && t != keep {
			continue
		}
		kept = append(kept, rc)
	}
	run.Children = kept
}
