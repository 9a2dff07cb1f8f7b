// Package recents surfaces the visitor's recent downloads in the link
// table: matched rows move to the top in the server's order and get a
// marker next to their link.
package recents

import (
	"context"
	"errors"
	"net/http"

	"downloadpage/internal/cookies"
	"downloadpage/internal/diag"
	"downloadpage/internal/dom"
	"downloadpage/internal/request"
)

const recentPath = "/recent-downloads"

var errNotArray = errors.New("recent downloads: body is not a JSON array")

// Table is the part of the document the reconciler rearranges.
type Table interface {
	RemoveMarkers() int
	Find(link string) (dom.Row, bool)
	Mark(r dom.Row)
	MoveToTop(r dom.Row)
}

// Result describes what one reconciliation did.
type Result struct {
	// Fetched is false when there was no session to ask about.
	Fetched bool
	Matched []string
	Skipped []string
	// Removed counts markers left over from an earlier run.
	Removed int
}

type Reconciler struct {
	client  *request.Client
	cookies cookies.Store
	table   Table
	sink    diag.Sink
}

func New(client *request.Client, store cookies.Store, table Table, sink diag.Sink) *Reconciler {
	if sink == nil {
		sink = diag.Discard
	}
	return &Reconciler{client: client, cookies: store, table: table, sink: sink}
}

// Reconcile fetches the recent list and applies it to the table. Any
// failure leaves the table exactly as it was.
func (r *Reconciler) Reconcile(ctx context.Context) (Result, error) {
	if !r.cookies.Has(cookies.SessionName) {
		return Result{}, nil
	}
	links, err := r.fetch(ctx)
	if err != nil {
		r.sink.Printf("RECENTS fetch failed: %v", err)
		return Result{Fetched: true}, err
	}
	res := r.Apply(links)
	res.Fetched = true
	r.sink.Printf("RECENTS matched=%d skipped=%d removed=%d", len(res.Matched), len(res.Skipped), res.Removed)
	return res, nil
}

func (r *Reconciler) fetch(ctx context.Context) ([]string, error) {
	req, err := r.client.Factory().NewRequest(ctx, http.MethodGet, recentPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Send(request.NoCache(req))
	if err != nil {
		return nil, err
	}
	var links []string
	if err := request.DecodeJSON(resp, &links); err != nil {
		return nil, err
	}
	if links == nil {
		return nil, &request.ParseError{URL: req.URL.String(), Err: errNotArray}
	}
	return links, nil
}

// Apply rearranges the table for links, most recent first. Old markers go
// first so repeated runs never stack them. A link listed twice counts
// once.
func (r *Reconciler) Apply(links []string) Result {
	res := Result{Removed: r.table.RemoveMarkers()}
	seen := make(map[string]struct{}, len(links))
	var rows []dom.Row
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		row, ok := r.table.Find(link)
		if !ok {
			res.Skipped = append(res.Skipped, link)
			continue
		}
		r.table.Mark(row)
		rows = append(rows, row)
		res.Matched = append(res.Matched, link)
	}
	// Moving to the top in reverse leaves the rows in list order.
	for i := len(rows) - 1; i >= 0; i-- {
		r.table.MoveToTop(rows[i])
	}
	return res
}
