package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"downloadpage/internal/env"
)

// Credentials mirrors the fetch credentials mode.
type Credentials string

// Mode mirrors the fetch request mode.
type Mode string

const (
	CredentialsInclude Credentials = "include"
	ModeCORS           Mode        = "cors"
)

const (
	localBackend = "http://localhost:9999"
	appPrefix    = "/app"
)

// Config is the shared option set every outbound call carries.
type Config struct {
	BaseURLPrefix string
	Credentials   Credentials
	Mode          Mode
}

// BuildConfig returns the request options for env. CORS mode is only set
// when the backend lives on another origin.
func BuildConfig(e env.Environment) Config {
	cfg := Config{
		BaseURLPrefix: basePrefix(e),
		Credentials:   CredentialsInclude,
	}
	if !e.IsProduction() {
		cfg.Mode = ModeCORS
	}
	return cfg
}

// Endpoint returns the URL for path in env.
func Endpoint(e env.Environment, path string) string {
	return basePrefix(e) + path
}

func basePrefix(e env.Environment) string {
	if e.IsProduction() {
		return appPrefix
	}
	return localBackend + appPrefix
}

// Factory binds the resolved environment to the page it was resolved for.
type Factory struct {
	env  env.Environment
	cfg  Config
	page *neturl.URL
}

// NewFactory resolves the environment for pageURL (honouring override)
// and freezes the request configuration for the page's lifetime.
func NewFactory(pageURL string, override env.Environment) (*Factory, error) {
	page, err := neturl.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	loc, err := env.LocationFromURL(page.String())
	if err != nil {
		return nil, err
	}
	e := env.Resolve(loc, override)
	return &Factory{env: e, cfg: BuildConfig(e), page: page}, nil
}

func (f *Factory) Env() env.Environment { return f.env }

func (f *Factory) Config() Config { return f.cfg }

// PageURL returns a copy of the page location.
func (f *Factory) PageURL() *neturl.URL {
	u := *f.page
	return &u
}

func (f *Factory) Endpoint(path string) string { return Endpoint(f.env, path) }

// URL resolves the endpoint for path against the page, so the relative
// production prefix becomes a same-origin absolute URL.
func (f *Factory) URL(path string) (*neturl.URL, error) {
	ref, err := neturl.Parse(f.Endpoint(path))
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", path, err)
	}
	return f.page.ResolveReference(ref), nil
}

// NewRequest builds a request for one of the backend endpoints.
func (f *Factory) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := f.URL(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if f.cfg.Mode == ModeCORS {
		req.Header.Set("Origin", origin(f.page))
		req.Header.Set("Sec-Fetch-Mode", string(ModeCORS))
	} else {
		req.Header.Set("Sec-Fetch-Mode", "same-origin")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// NoCache asks every cache on the way to revalidate.
func NoCache(req *http.Request) *http.Request {
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	return req
}

func origin(u *neturl.URL) string {
	return u.Scheme + "://" + u.Host
}
