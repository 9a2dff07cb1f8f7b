// Package preference drives the remember-me button: a two-state machine
// whose state is always the last one the server confirmed.
package preference

import (
	"context"
	"net/http"
	"sync"

	"downloadpage/internal/cookies"
	"downloadpage/internal/diag"
	"downloadpage/internal/dom"
	"downloadpage/internal/request"
)

// State is whether the visitor is remembered.
type State int

const (
	Forgotten State = iota
	Remembered
)

func (s State) String() string {
	if s == Remembered {
		return "remembered"
	}
	return "forgotten"
}

const (
	// ButtonID is the id of the toggle on the download page.
	ButtonID = "remember-me"

	RememberLabel = "Remember me"
	ForgetLabel   = "Forget me"

	rememberListener = "remember-me"
	forgetListener   = "forget-me"

	rememberPath = "/cookie"
	forgetPath   = "/forget"
)

// Button is the part of the toggle element the controller drives.
type Button interface {
	SetLabel(text string)
	SetDisabled(v bool)
	TryDisable() bool
	AddClickListener(name string, fn dom.Handler)
	RemoveClickListener(name string)
}

// Reloader reloads the page after a successful forget.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadFunc adapts a function to Reloader.
type ReloadFunc func(ctx context.Context) error

func (f ReloadFunc) Reload(ctx context.Context) error { return f(ctx) }

// Controller owns the button's label, listener and enabled state.
type Controller struct {
	mu      sync.Mutex
	state   State
	button  Button
	client  *request.Client
	cookies cookies.Store
	reload  Reloader
	sink    diag.Sink
}

func New(button Button, client *request.Client, store cookies.Store, reload Reloader, sink diag.Sink) *Controller {
	if sink == nil {
		sink = diag.Discard
	}
	if reload == nil {
		reload = ReloadFunc(func(context.Context) error { return nil })
	}
	return &Controller{
		button:  button,
		client:  client,
		cookies: store,
		reload:  reload,
		sink:    sink,
	}
}

// Init reads the session cookie and binds the button to match.
func (c *Controller) Init() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cookies.Has(cookies.SessionName) {
		c.bind(Remembered)
	} else {
		c.bind(Forgotten)
	}
	return c.state
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// bind must be called with c.mu held. The old listener always goes
// before the new one is attached.
func (c *Controller) bind(s State) {
	switch s {
	case Remembered:
		c.button.RemoveClickListener(rememberListener)
		c.button.SetLabel(ForgetLabel)
		c.button.AddClickListener(forgetListener, c.forget)
	default:
		c.button.RemoveClickListener(forgetListener)
		c.button.SetLabel(RememberLabel)
		c.button.AddClickListener(rememberListener, c.remember)
	}
	c.state = s
}

func (c *Controller) remember(ctx context.Context) error {
	if !c.button.TryDisable() {
		return nil
	}
	defer c.button.SetDisabled(false)

	if err := c.roundTrip(ctx, rememberPath); err != nil {
		c.sink.Printf("PREF remember failed: %v", err)
		return err
	}
	c.mu.Lock()
	c.bind(Remembered)
	c.mu.Unlock()
	return nil
}

func (c *Controller) forget(ctx context.Context) error {
	if !c.button.TryDisable() {
		return nil
	}
	defer c.button.SetDisabled(false)

	if err := c.roundTrip(ctx, forgetPath); err != nil {
		c.sink.Printf("PREF forget failed: %v", err)
		return err
	}
	c.cookies.Clear(cookies.SessionName)
	if err := c.reload.Reload(ctx); err != nil {
		c.sink.Printf("PREF reload failed: %v", err)
	}
	c.mu.Lock()
	c.bind(Forgotten)
	c.mu.Unlock()
	return nil
}

func (c *Controller) roundTrip(ctx context.Context, path string) error {
	req, err := c.client.Factory().NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	_, err = c.client.Discard(req)
	return err
}
