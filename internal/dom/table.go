package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TableOptions locates the link table and describes the recent marker.
type TableOptions struct {
	// Body selects the table body whose rows get reordered.
	Body string
	// Link selects the link inside a row.
	Link        string
	MarkerClass string
	MarkerText  string
	MarkerStyle string
}

// DefaultTableOptions matches the download page layout.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		Body:        "table tbody",
		Link:        "a[href]",
		MarkerClass: "recent",
		MarkerText:  "recent",
	}
}

// Row is one table row and the link that identifies it.
type Row struct {
	tr   *html.Node
	link *html.Node
}

func (r Row) Link() string { return getAttr(r.link, "href") }

// RowInfo is a read-only view of a row.
type RowInfo struct {
	Link   string
	Text   string
	Recent bool
}

// LinkTable is the download table as the recents logic sees it.
type LinkTable struct {
	doc    *Document
	opts   TableOptions
	body   cascadia.SelectorGroup
	link   cascadia.SelectorGroup
	marker cascadia.SelectorGroup
	style  string
}

func NewLinkTable(doc *Document, opts TableOptions) (*LinkTable, error) {
	def := DefaultTableOptions()
	if opts.Body == "" {
		opts.Body = def.Body
	}
	if opts.Link == "" {
		opts.Link = def.Link
	}
	if opts.MarkerClass == "" {
		opts.MarkerClass = def.MarkerClass
	}
	if opts.MarkerText == "" {
		opts.MarkerText = def.MarkerText
	}
	if strings.ContainsAny(opts.MarkerClass, " \t\n") {
		return nil, fmt.Errorf("marker class %q must be a single class name", opts.MarkerClass)
	}
	body, err := cascadia.ParseGroup(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("body selector %q: %w", opts.Body, err)
	}
	link, err := cascadia.ParseGroup(opts.Link)
	if err != nil {
		return nil, fmt.Errorf("link selector %q: %w", opts.Link, err)
	}
	marker, err := cascadia.ParseGroup("." + opts.MarkerClass)
	if err != nil {
		return nil, fmt.Errorf("marker class %q: %w", opts.MarkerClass, err)
	}
	style, err := NormalizeStyle(opts.MarkerStyle)
	if err != nil {
		return nil, err
	}
	return &LinkTable{doc: doc, opts: opts, body: body, link: link, marker: marker, style: style}, nil
}

// bodyNode must be called with the document locked.
func (t *LinkTable) bodyNode() *html.Node {
	return cascadia.Query(t.doc.root, t.body)
}

// rows must be called with the document locked.
func (t *LinkTable) rows() []Row {
	body := t.bodyNode()
	if body == nil {
		return nil
	}
	var out []Row
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if !isElement(c, "tr") {
			continue
		}
		out = append(out, Row{tr: c, link: cascadia.Query(c, t.link)})
	}
	return out
}

// RemoveMarkers deletes every recent marker in the document.
func (t *LinkTable) RemoveMarkers() int {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	found := cascadia.QueryAll(t.doc.root, t.marker)
	for _, n := range found {
		detach(n)
	}
	return len(found)
}

// Find returns the row whose link points exactly at link.
func (t *LinkTable) Find(link string) (Row, bool) {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	for _, r := range t.rows() {
		if r.link != nil && getAttr(r.link, "href") == link {
			return r, true
		}
	}
	return Row{}, false
}

// Mark inserts a recent marker right after the row's link.
func (t *LinkTable) Mark(r Row) {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	if r.link == nil || r.link.Parent == nil {
		return
	}
	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: t.opts.MarkerClass}},
	}
	if t.style != "" {
		marker.Attr = append(marker.Attr, html.Attribute{Key: "style", Val: t.style})
	}
	marker.AppendChild(&html.Node{Type: html.TextNode, Data: t.opts.MarkerText})
	insertAfter(r.link, marker)
}

// MoveToTop moves the row before the body's current first child.
func (t *LinkTable) MoveToTop(r Row) {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	body := r.tr.Parent
	if body == nil || body.FirstChild == r.tr {
		return
	}
	insertBefore(body.FirstChild, r.tr)
}

// Rows lists the table in its current order.
func (t *LinkTable) Rows() []RowInfo {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	rows := t.rows()
	out := make([]RowInfo, 0, len(rows))
	for _, r := range rows {
		info := RowInfo{Text: Text(r.tr)}
		if r.link != nil {
			info.Link = getAttr(r.link, "href")
		}
		info.Recent = cascadia.Query(r.tr, t.marker) != nil
		out = append(out, info)
	}
	return out
}

// MarkerCount counts the markers inside the row for link.
func (t *LinkTable) MarkerCount(link string) int {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	for _, r := range t.rows() {
		if r.link != nil && getAttr(r.link, "href") == link {
			return len(cascadia.QueryAll(r.tr, t.marker))
		}
	}
	return 0
}

// MarkerFollowsLink reports whether the node right after the row's link
// is a recent marker.
func (t *LinkTable) MarkerFollowsLink(link string) bool {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	for _, r := range t.rows() {
		if r.link != nil && getAttr(r.link, "href") == link {
			next := r.link.NextSibling
			return next != nil && next.Type == html.ElementNode && hasClass(next, t.opts.MarkerClass)
		}
	}
	return false
}
