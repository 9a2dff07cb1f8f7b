// Package dom is the page's document model: an x/net/html tree queried
// with CSS selectors, plus the two widgets the page scripts touch (the
// remember-me button and the link table).
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed page. Every read and write of the tree goes
// through its lock, so widgets may be driven from different goroutines.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) { return Parse(strings.NewReader(s)) }

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

// ByID is document.getElementById.
func (d *Document) ByID(id string) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	var dfs func(*html.Node) *html.Node
	dfs = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if r := dfs(c); r != nil {
				return r
			}
		}
		return nil
	}
	return dfs(d.root)
}
