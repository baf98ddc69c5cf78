package manuscript

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLStore handles HTML files.
//
// Paragraphs map to <p> and <h1>..<h6> elements in document order.
type HTMLStore struct{}

func (s *HTMLStore) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &htmlDocument{root: root}
	start := findBodyNode(root)
	if start == nil {
		start = root
	}
	collectBlocks(start, &d.nodes)
	return d, nil
}

type htmlDocument struct {
	root  *html.Node
	nodes []*html.Node
}

func (d *htmlDocument) Len() int { return len(d.nodes) }

func (d *htmlDocument) Text(i int) string {
	return nodeText(d.nodes[i])
}

func (d *htmlDocument) Heading(i int) bool {
	return htmlHeadingLevel(d.nodes[i].Data) > 0
}

// SetText replaces the element's children with a single text node; the
// element and its attributes are untouched.
func (d *htmlDocument) SetText(i int, text string) {
	n := d.nodes[i]
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (d *htmlDocument) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html: %w", err)
	}
	if err := html.Render(f, d.root); err != nil {
		f.Close()
		return fmt.Errorf("render html: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close html: %w", err)
	}
	return nil
}

// collectBlocks gathers paragraph and heading elements in document order.
func collectBlocks(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode {
		switch {
		case n.Data == "p" || htmlHeadingLevel(n.Data) > 0:
			*out = append(*out, n)
			return
		case n.Data == "script" || n.Data == "style" || n.Data == "nav":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

func htmlHeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}
