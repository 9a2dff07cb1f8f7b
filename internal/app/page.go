package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"downloadpage/internal/browser"
	"downloadpage/internal/cookies"
	"downloadpage/internal/copylink"
	"downloadpage/internal/diag"
	"downloadpage/internal/dom"
	"downloadpage/internal/env"
	"downloadpage/internal/preference"
	"downloadpage/internal/recents"
	"downloadpage/internal/request"
)

// Page is the context one page load shares between its components.
// Reload rebuilds the widgets on a freshly loaded document; the factory,
// client, cookie store and beacon survive it.
type Page struct {
	cfg     Config
	factory *request.Factory
	client  *request.Client
	store   cookies.Store
	loader  Loader
	sink    diag.Sink
	logger  *log.Logger
	copier  *copylink.Notifier
	closers []io.Closer

	mu      sync.Mutex
	doc     *dom.Document
	button  *dom.Button
	table   *dom.LinkTable
	prefs   *preference.Controller
	recents *recents.Reconciler
	result  recents.Result
}

// Load builds the page context and runs the page's initialization once.
// A failed recents reconciliation is logged, not returned.
func Load(ctx context.Context, cfg Config) (*Page, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	factory, err := request.NewFactory(cfg.PageURL, cfg.Env)
	if err != nil {
		return nil, err
	}
	p := &Page{
		cfg:     cfg,
		factory: factory,
		logger:  cfg.Logger,
		sink:    diag.ForEnvironment(factory.Env(), cfg.Logger),
	}
	if cfg.StatePath != "" {
		st, err := cookies.OpenSQLite(ctx, cfg.StatePath, factory.PageURL(), cfg.Logger)
		if err != nil {
			return nil, err
		}
		p.store = st
		p.closers = append(p.closers, st)
	} else {
		p.store = cookies.NewJarStore(factory.PageURL())
	}
	p.client = request.NewClient(factory, p.store, cfg.HTTPClient)
	p.copier = copylink.New(p.client, p.sink)

	switch {
	case cfg.Loader != nil:
		p.loader = cfg.Loader
	case cfg.JS:
		bl := browser.New(cfg.Logger)
		p.loader = bl
		p.closers = append(p.closers, bl)
	default:
		p.loader = HTTPLoader{Client: cfg.HTTPClient}
	}

	p.logger.Printf("LOAD %s env=%s", factory.PageURL(), factory.Env())
	if err := p.Reload(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Reload fetches the document again and re-runs initialization against
// it, as a browser reload would. The page keeps its current document
// and widgets when the new document cannot be bound.
func (p *Page) Reload(ctx context.Context) error {
	doc, err := p.loader.Load(ctx, p.factory.PageURL(), p.store)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	button, err := doc.Button(p.cfg.ButtonID)
	if err != nil {
		return err
	}
	table, err := dom.NewLinkTable(doc, p.cfg.Table)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.doc = doc
	p.button = button
	p.table = table
	p.prefs = preference.New(button, p.client, p.store, p, p.sink)
	p.recents = recents.New(p.client, p.store, table, p.sink)
	p.result = recents.Result{}
	p.mu.Unlock()
	return p.init(ctx)
}

// init runs the button setup and the recents reconciliation side by side.
func (p *Page) init(ctx context.Context) error {
	p.mu.Lock()
	prefs, rec := p.prefs, p.recents
	p.mu.Unlock()

	var res recents.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		prefs.Init()
		return nil
	})
	g.Go(func() error {
		r, err := rec.Reconcile(gctx)
		if err != nil {
			p.logger.Printf("LOAD recents skipped: %v", err)
		}
		res = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.mu.Lock()
	p.result = res
	p.mu.Unlock()
	return nil
}

// Reconcile re-runs the recents reconciliation on the current document.
func (p *Page) Reconcile(ctx context.Context) (recents.Result, error) {
	p.mu.Lock()
	rec := p.recents
	p.mu.Unlock()
	res, err := rec.Reconcile(ctx)
	if err == nil {
		p.mu.Lock()
		p.result = res
		p.mu.Unlock()
	}
	return res, err
}

// Click dispatches a click on the remember-me button. The page lock is
// not held while listeners run, since forget reloads the page.
func (p *Page) Click(ctx context.Context) error {
	p.mu.Lock()
	b := p.button
	p.mu.Unlock()
	return b.Click(ctx)
}

// CopyLink reports a copied download link.
func (p *Page) CopyLink(ctx context.Context, link string) error {
	return p.copier.Notify(ctx, copylink.Event{URL: link})
}

// Wait blocks until every copy beacon sent so far has finished.
func (p *Page) Wait() { p.copier.Wait() }

func (p *Page) Env() env.Environment { return p.factory.Env() }

func (p *Page) RequestConfig() request.Config { return p.factory.Config() }

func (p *Page) Factory() *request.Factory { return p.factory }

func (p *Page) Store() cookies.Store { return p.store }

func (p *Page) Document() *dom.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

func (p *Page) Button() *dom.Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.button
}

func (p *Page) Table() *dom.LinkTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table
}

func (p *Page) State() preference.State {
	p.mu.Lock()
	prefs := p.prefs
	p.mu.Unlock()
	return prefs.State()
}

// Recents is the result of the latest reconciliation.
func (p *Page) Recents() recents.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Close waits for in-flight beacons and releases the cookie database and
// browser.
func (p *Page) Close() error {
	p.copier.Wait()
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
