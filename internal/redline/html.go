package redline

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLComparer emits edits as <ins> and <del> elements inside a copy of the
// original document.
type HTMLComparer struct{}

func (c *HTMLComparer) Compare(originalPath, editedPath, outPath string) error {
	origRoot, origBlocks, err := loadHTMLBlocks(originalPath)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	_, editedBlocks, err := loadHTMLBlocks(editedPath)
	if err != nil {
		return fmt.Errorf("open edited: %w", err)
	}
	if len(origBlocks) != len(editedBlocks) {
		return fmt.Errorf("paragraph count mismatch: %d vs %d", len(origBlocks), len(editedBlocks))
	}

	for i, block := range origBlocks {
		before := blockText(block)
		after := blockText(editedBlocks[i])
		if before == after {
			continue
		}
		rewriteHTMLBlock(block, Diff(before, after))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create redline: %w", err)
	}
	if err := html.Render(f, origRoot); err != nil {
		f.Close()
		return fmt.Errorf("render redline: %w", err)
	}
	return f.Close()
}

// rewriteHTMLBlock replaces the block's children with the edit script:
// equal spans as text nodes, changes wrapped in <del> / <ins>.
func rewriteHTMLBlock(block *html.Node, edits []Edit) {
	for block.FirstChild != nil {
		block.RemoveChild(block.FirstChild)
	}
	for _, e := range edits {
		switch e.Op {
		case OpEqual:
			block.AppendChild(textNode(e.Text))
		case OpDelete:
			del := elemNode("del", atom.Del)
			del.AppendChild(textNode(e.Text))
			block.AppendChild(del)
		case OpInsert:
			ins := elemNode("ins", atom.Ins)
			ins.AppendChild(textNode(e.Text))
			block.AppendChild(ins)
		}
	}
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func elemNode(tag string, a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: a}
}

// loadHTMLBlocks parses a file and returns its root plus the paragraph and
// heading elements in document order, mirroring the manuscript store's view.
func loadHTMLBlocks(path string) (*html.Node, []*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, nil, err
	}

	start := findBody(root)
	if start == nil {
		start = root
	}
	var blocks []*html.Node
	collect(start, &blocks)
	return root, blocks, nil
}

func collect(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			*out = append(*out, n)
			return
		case "script", "style", "nav":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, out)
	}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func blockText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
