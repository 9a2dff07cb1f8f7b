package dom

import (
	"strings"

	"golang.org/x/net/html"
)

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, name) {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// Text returns the whitespace-condensed text under n, skipping scripts
// and styles.
func Text(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(x *html.Node) {
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				t := strings.ToLower(c.Data)
				if t == "style" || t == "script" || t == "noscript" {
					continue
				}
				rec(c)
			}
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// insertAfter places n right after ref under ref's parent.
func insertAfter(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil {
		return
	}
	detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// insertBefore places n right before ref under ref's parent.
func insertBefore(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil || ref == n {
		return
	}
	detach(n)
	ref.Parent.InsertBefore(n, ref)
}

func detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func hasClass(n *html.Node, want string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == want {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}
