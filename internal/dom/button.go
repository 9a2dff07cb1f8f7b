package dom

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// Handler is a click listener. It runs on the caller's goroutine.
type Handler func(ctx context.Context) error

type listener struct {
	name string
	fn   Handler
}

// Button is a <button> element with named click listeners.
type Button struct {
	doc       *Document
	node      *html.Node
	listeners []listener
}

// Button looks up the button element with the given id.
func (d *Document) Button(id string) (*Button, error) {
	n := d.ByID(id)
	if n == nil {
		return nil, fmt.Errorf("button #%s not found", id)
	}
	return &Button{doc: d, node: n}, nil
}

func (b *Button) Label() string {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return Text(b.node)
}

// SetLabel replaces the button's content with text, like innerText.
func (b *Button) SetLabel(text string) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	for c := b.node.FirstChild; c != nil; c = b.node.FirstChild {
		b.node.RemoveChild(c)
	}
	b.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (b *Button) Disabled() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return hasAttr(b.node, "disabled")
}

func (b *Button) SetDisabled(v bool) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	if v {
		setAttr(b.node, "disabled", "")
	} else {
		removeAttr(b.node, "disabled")
	}
}

// TryDisable disables the button unless it already is, reporting whether
// this call did it. It is the check-and-set a click handler uses to keep
// a second click out while a request is in flight.
func (b *Button) TryDisable() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	if hasAttr(b.node, "disabled") {
		return false
	}
	setAttr(b.node, "disabled", "")
	return true
}

// AddClickListener attaches fn under name. Adding a name that is already
// attached is a no-op, like addEventListener with the same function.
func (b *Button) AddClickListener(name string, fn Handler) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	for _, l := range b.listeners {
		if l.name == name {
			return
		}
	}
	b.listeners = append(b.listeners, listener{name: name, fn: fn})
}

func (b *Button) RemoveClickListener(name string) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	out := b.listeners[:0]
	for _, l := range b.listeners {
		if l.name != name {
			out = append(out, l)
		}
	}
	b.listeners = out
}

// Listeners returns the attached listener names in attach order.
func (b *Button) Listeners() []string {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	names := make([]string, 0, len(b.listeners))
	for _, l := range b.listeners {
		names = append(names, l.name)
	}
	return names
}

// Click dispatches a click. A disabled button swallows it.
func (b *Button) Click(ctx context.Context) error {
	b.doc.mu.Lock()
	if hasAttr(b.node, "disabled") {
		b.doc.mu.Unlock()
		return nil
	}
	ls := append([]listener(nil), b.listeners...)
	b.doc.mu.Unlock()
	var errs []error
	for _, l := range ls {
		if err := l.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
		}
	}
	return errors.Join(errs...)
}
