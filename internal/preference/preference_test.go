package preference

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"downloadpage/internal/cookies"
	"downloadpage/internal/diag"
	"downloadpage/internal/dom"
	"downloadpage/internal/request"
	"downloadpage/internal/request/requesttest"
)

const page = `<html><body><button id="remember-me">loading</button></body></html>`

type fixture struct {
	ctrl    *Controller
	button  *dom.Button
	store   *cookies.JarStore
	tr      *requesttest.Transport
	sink    *diag.Recorder
	reloads int
	mu      sync.Mutex
}

func newFixture(t *testing.T, withCookie bool) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	button, err := doc.Button(ButtonID)
	if err != nil {
		t.Fatalf("button: %v", err)
	}
	f, err := request.NewFactory("http://localhost:3333/", "")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	pageURL, _ := url.Parse("http://localhost:3333/")
	store := cookies.NewJarStore(pageURL)
	if withCookie {
		store.Set(&http.Cookie{Name: cookies.SessionName, Value: "ID1", Path: "/"})
	}
	tr := requesttest.NewTransport()
	fx := &fixture{button: button, store: store, tr: tr, sink: &diag.Recorder{}}
	reload := ReloadFunc(func(context.Context) error {
		fx.mu.Lock()
		fx.reloads++
		fx.mu.Unlock()
		if store.Has(cookies.SessionName) {
			t.Errorf("reload ran before the session cookie was cleared")
		}
		return nil
	})
	fx.ctrl = New(button, request.NewClient(f, store, tr.Client()), store, reload, fx.sink)
	return fx
}

func (fx *fixture) assertBound(t *testing.T, want State) {
	t.Helper()
	if got := fx.ctrl.State(); got != want {
		t.Fatalf("state = %s, want %s", got, want)
	}
	listeners := fx.button.Listeners()
	if len(listeners) != 1 {
		t.Fatalf("expected exactly one listener, got %v", listeners)
	}
	wantListener, wantLabel := rememberListener, RememberLabel
	if want == Remembered {
		wantListener, wantLabel = forgetListener, ForgetLabel
	}
	if listeners[0] != wantListener {
		t.Fatalf("listener = %q, want %q", listeners[0], wantListener)
	}
	if fx.button.Label() != wantLabel {
		t.Fatalf("label = %q, want %q", fx.button.Label(), wantLabel)
	}
	if fx.button.Disabled() {
		t.Fatalf("button left disabled")
	}
}

func TestInit(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, false)
	if got := fx.ctrl.Init(); got != Forgotten {
		t.Fatalf("Init = %s", got)
	}
	fx.assertBound(t, Forgotten)

	fx = newFixture(t, true)
	if got := fx.ctrl.Init(); got != Remembered {
		t.Fatalf("Init with cookie = %s", got)
	}
	fx.assertBound(t, Remembered)
}

func TestRememberSuccess(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, false)
	fx.tr.On("/app/cookie", requesttest.Reply{
		Status: http.StatusOK,
		Header: http.Header{"Set-Cookie": {"downloadkubernetes=NEWID; Path=/"}},
	})
	fx.ctrl.Init()
	if err := fx.button.Click(context.Background()); err != nil {
		t.Fatalf("Click: %v", err)
	}
	fx.assertBound(t, Remembered)
	if !fx.store.Has(cookies.SessionName) {
		t.Fatalf("Set-Cookie from /cookie did not reach the store")
	}
	if fx.tr.Count("/app/cookie") != 1 {
		t.Fatalf("expected one /cookie request, got %v", fx.tr.Requests())
	}
}

func TestRememberFailureKeepsState(t *testing.T) {
	t.Parallel()
	for name, reply := range map[string]requesttest.Reply{
		"server error":    {Status: http.StatusInternalServerError},
		"network failure": {Err: requesttest.ErrOffline},
	} {
		reply := reply
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fx := newFixture(t, false)
			fx.tr.On("/app/cookie", reply)
			fx.ctrl.Init()
			if err := fx.button.Click(context.Background()); err == nil {
				t.Fatalf("expected the failed round trip to be reported")
			}
			fx.assertBound(t, Forgotten)
			if !fx.sink.Contains("PREF remember failed") {
				t.Fatalf("failure not logged: %v", fx.sink.Lines())
			}
		})
	}
}

func TestForgetFailureKeepsCookie(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, true)
	fx.tr.On("/app/forget", requesttest.Reply{Status: http.StatusBadGateway})
	fx.ctrl.Init()
	_ = fx.button.Click(context.Background())
	fx.assertBound(t, Remembered)
	if !fx.store.Has(cookies.SessionName) {
		t.Fatalf("failed forget cleared the cookie")
	}
	if fx.reloads != 0 {
		t.Fatalf("failed forget reloaded the page")
	}
}

func TestForgetSuccess(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, true)
	fx.tr.On("/app/forget", requesttest.Reply{Status: http.StatusNoContent})
	fx.ctrl.Init()
	if err := fx.button.Click(context.Background()); err != nil {
		t.Fatalf("Click: %v", err)
	}
	fx.assertBound(t, Forgotten)
	if fx.store.Has(cookies.SessionName) {
		t.Fatalf("cookie still present after forget")
	}
	if fx.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", fx.reloads)
	}
}

func TestRepeatedTogglesKeepOneListener(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, false)
	fx.tr.On("/app/cookie", requesttest.Reply{Header: http.Header{"Set-Cookie": {"downloadkubernetes=X; Path=/"}}})
	fx.tr.On("/app/forget", requesttest.Reply{})
	fx.ctrl.Init()
	for i := 0; i < 3; i++ {
		_ = fx.button.Click(context.Background())
		fx.assertBound(t, Remembered)
		_ = fx.button.Click(context.Background())
		fx.assertBound(t, Forgotten)
	}
	if fx.tr.Count("/app/cookie") != 3 || fx.tr.Count("/app/forget") != 3 {
		t.Fatalf("unexpected requests: %v", fx.tr.Requests())
	}
}

func TestDoubleClickIssuesOneRequest(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, false)
	block := make(chan struct{})
	fx.tr.On("/app/cookie", requesttest.Reply{Block: block})
	fx.ctrl.Init()

	done := make(chan error, 1)
	go func() { done <- fx.button.Click(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for fx.tr.Count("/app/cookie") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first click never reached the transport")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !fx.button.Disabled() {
		t.Fatalf("button should be disabled while the request is in flight")
	}
	if err := fx.button.Click(context.Background()); err != nil {
		t.Fatalf("second click: %v", err)
	}
	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first click: %v", err)
	}
	if n := fx.tr.Count("/app/cookie"); n != 1 {
		t.Fatalf("double click issued %d requests", n)
	}
	fx.assertBound(t, Remembered)
}
