package redline

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/kdurfey/redline/internal/manuscript"
)

const wordDocumentPart = "word/document.xml"

// DocxComparer rewrites word/document.xml inside a copy of the original
// package, emitting w:ins and w:del revisions for each changed paragraph.
// Every other package part (styles, media, footnotes, fields) is copied
// byte-for-byte, so formatting outside the changed paragraphs is untouched.
type DocxComparer struct {
	Author string
	// Now stamps revisions; overridable for deterministic output.
	Now func() time.Time
}

func (c *DocxComparer) Compare(originalPath, editedPath, outPath string) error {
	store := &manuscript.DocxStore{}

	orig, err := store.Open(originalPath)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	edited, err := store.Open(editedPath)
	if err != nil {
		return fmt.Errorf("open edited: %w", err)
	}
	if orig.Len() != edited.Len() {
		return fmt.Errorf("paragraph count mismatch: %d vs %d", orig.Len(), edited.Len())
	}

	raw, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("read original package: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("open original package: %w", err)
	}

	docXML, err := readZipPart(zr, wordDocumentPart)
	if err != nil {
		return err
	}

	newXML, err := c.rewriteDocument(docXML, orig, edited)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			zw.Close()
			return fmt.Errorf("write package entry %s: %w", f.Name, err)
		}
		if f.Name == wordDocumentPart {
			if _, err := w.Write(newXML); err != nil {
				zw.Close()
				return fmt.Errorf("write %s: %w", wordDocumentPart, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return fmt.Errorf("open package entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return fmt.Errorf("copy package entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish package: %w", err)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save redline: %w", err)
	}
	return nil
}

// rewriteDocument walks the top-level body paragraphs of document.xml in
// step with the loader's paragraph view and rewrites the changed ones.
func (c *DocxComparer) rewriteDocument(docXML []byte, orig, edited manuscript.Document) ([]byte, error) {
	xdoc, err := xmlquery.Parse(bytes.NewReader(docXML))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", wordDocumentPart, err)
	}
	body := xmlquery.FindOne(xdoc, "//w:body")
	if body == nil {
		return nil, fmt.Errorf("no w:body in %s", wordDocumentPart)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	date := now().UTC().Format(time.RFC3339)
	author := c.Author
	if author == "" {
		author = "redline"
	}

	paraIdx := 0
	rev := 1
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || n.Prefix != "w" || n.Data != "p" {
			continue
		}
		if paraIdx >= orig.Len() {
			break
		}
		before := orig.Text(paraIdx)
		after := edited.Text(paraIdx)
		paraIdx++
		if before == after {
			continue
		}
		rev = rewriteParagraph(n, Diff(before, after), author, date, rev)
	}
	if paraIdx != orig.Len() {
		return nil, fmt.Errorf("document structure mismatch: saw %d paragraphs, expected %d", paraIdx, orig.Len())
	}

	docElem := xmlquery.FindOne(xdoc, "//w:document")
	if docElem == nil {
		return nil, fmt.Errorf("no w:document in %s", wordDocumentPart)
	}
	var out bytes.Buffer
	out.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	out.WriteString(docElem.OutputXML(true))
	return out.Bytes(), nil
}

// rewriteParagraph rebuilds a w:p element from an edit script. Paragraph
// properties are kept; generated runs inherit the first run's properties.
// Returns the next free revision id.
func rewriteParagraph(p *xmlquery.Node, edits []Edit, author, date string, rev int) int {
	var pPr, rPr *xmlquery.Node
	for child := p.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode || child.Prefix != "w" {
			continue
		}
		switch child.Data {
		case "pPr":
			if pPr == nil {
				pPr = child
			}
		case "r":
			if rPr == nil {
				rPr = findChildElem(child, "rPr")
			}
		}
	}

	p.FirstChild, p.LastChild = nil, nil
	if pPr != nil {
		detach(pPr)
		appendChild(p, pPr)
	}

	for _, e := range edits {
		if e.Text == "" {
			continue
		}
		switch e.Op {
		case OpEqual:
			appendChild(p, runNode(rPr, "t", e.Text))
		case OpDelete:
			del := revisionNode("del", author, date, rev)
			appendChild(del, runNode(rPr, "delText", e.Text))
			appendChild(p, del)
			rev++
		case OpInsert:
			ins := revisionNode("ins", author, date, rev)
			appendChild(ins, runNode(rPr, "t", e.Text))
			appendChild(p, ins)
			rev++
		}
	}
	return rev
}

func revisionNode(name, author, date string, rev int) *xmlquery.Node {
	n := wordElem(name)
	n.Attr = []xmlquery.Attr{
		{Name: xml.Name{Local: "w:id"}, Value: strconv.Itoa(rev)},
		{Name: xml.Name{Local: "w:author"}, Value: author},
		{Name: xml.Name{Local: "w:date"}, Value: date},
	}
	return n
}

// runNode builds <w:r><w:rPr/><w:t xml:space="preserve">text</w:t></w:r>,
// with textElem either "t" or "delText".
func runNode(rPr *xmlquery.Node, textElem, text string) *xmlquery.Node {
	r := wordElem("r")
	if rPr != nil {
		appendChild(r, cloneNode(rPr))
	}
	t := wordElem(textElem)
	if text != strings.TrimSpace(text) {
		t.Attr = []xmlquery.Attr{
			{Name: xml.Name{Local: "xml:space"}, Value: "preserve"},
		}
	}
	appendChild(t, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
	appendChild(r, t)
	return r
}

func wordElem(name string) *xmlquery.Node {
	return &xmlquery.Node{Type: xmlquery.ElementNode, Prefix: "w", Data: name}
}

func findChildElem(n *xmlquery.Node, name string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Prefix == "w" && c.Data == name {
			return c
		}
	}
	return nil
}

func appendChild(parent, n *xmlquery.Node) {
	n.Parent = parent
	n.NextSibling = nil
	if parent.FirstChild == nil {
		n.PrevSibling = nil
		parent.FirstChild = n
	} else {
		n.PrevSibling = parent.LastChild
		parent.LastChild.NextSibling = n
	}
	parent.LastChild = n
}

func detach(n *xmlquery.Node) {
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

func cloneNode(n *xmlquery.Node) *xmlquery.Node {
	c := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
	}
	c.Attr = append([]xmlquery.Attr(nil), n.Attr...)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		appendChild(c, cloneNode(child))
	}
	return c
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in package", name)
}
