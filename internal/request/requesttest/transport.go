// Package requesttest provides a scripted http.RoundTripper for tests that
// need the fixed development backend address without binding it.
package requesttest

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Reply is one scripted response. A non-nil Err fails the round trip.
type Reply struct {
	Status int
	Body   string
	Header http.Header
	Err    error
	// Block, when set, holds the round trip until it is closed.
	Block chan struct{}
}

// Recorded is a request as the transport saw it.
type Recorded struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

// Transport answers requests by URL path.
type Transport struct {
	mu      sync.Mutex
	replies map[string]Reply
	seen    []Recorded
}

func NewTransport() *Transport {
	return &Transport{replies: make(map[string]Reply)}
}

// On scripts the reply for requests whose path equals path.
func (t *Transport) On(path string, r Reply) *Transport {
	t.mu.Lock()
	t.replies[path] = r
	t.mu.Unlock()
	return t
}

func (t *Transport) Client() *http.Client { return &http.Client{Transport: t} }

// Requests returns a snapshot of everything sent so far.
func (t *Transport) Requests() []Recorded {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Recorded(nil), t.seen...)
}

// Count returns how many requests hit path.
func (t *Transport) Count(path string) int {
	n := 0
	for _, r := range t.Requests() {
		if strings.HasSuffix(r.URL, path) || strings.Contains(r.URL, path+"?") {
			n++
		}
	}
	return n
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		req.Body.Close()
		body = string(b)
	}
	t.mu.Lock()
	t.seen = append(t.seen, Recorded{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	r, ok := t.replies[req.URL.Path]
	t.mu.Unlock()
	if r.Block != nil {
		select {
		case <-r.Block:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if !ok {
		r = Reply{Status: http.StatusNotFound}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	hdr := r.Header
	if hdr == nil {
		hdr = http.Header{}
	}
	return &http.Response{
		StatusCode: r.Status,
		Status:     http.StatusText(r.Status),
		Header:     hdr.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.Body)),
		Request:    req,
	}, nil
}

// ErrOffline is a canned transport failure.
var ErrOffline = errors.New("connection refused")
