// Package copylink sends the fire-and-forget beacon for copied links.
package copylink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"downloadpage/internal/diag"
	"downloadpage/internal/request"
)

const copiedPath = "/link-copied"

// Event is the payload the backend records for a copied link.
type Event struct {
	URL string `json:"URL"`
}

type Notifier struct {
	client *request.Client
	sink   diag.Sink
	wg     sync.WaitGroup
}

// New returns a notifier. Responses are only reported outside production.
func New(client *request.Client, sink diag.Sink) *Notifier {
	if sink == nil || client.Factory().Env().IsProduction() {
		sink = diag.Discard
	}
	return &Notifier{client: client, sink: sink}
}

// Notify serializes data now and posts it in the background. Only a
// payload that cannot be serialized is reported to the caller. ctx bounds
// the background request; it is detached from cancellation so a caller
// returning early does not abort the beacon.
func (n *Notifier) Notify(ctx context.Context, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("copy event: %w", err)
	}
	req, err := n.client.Factory().NewRequest(context.WithoutCancel(ctx), http.MethodPost, copiedPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		code, err := n.client.Discard(req)
		if err != nil {
			n.sink.Printf("COPY %s failed: %v", body, err)
			return
		}
		n.sink.Printf("COPY %s -> %d", body, code)
	}()
	return nil
}

// Wait blocks until every beacon sent so far has finished.
func (n *Notifier) Wait() { n.wg.Wait() }
