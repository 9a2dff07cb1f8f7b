package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"downloadpage/internal/dom"
	"downloadpage/internal/request"
)

// Loader fetches the page document. jar carries the page's cookies.
type Loader interface {
	Load(ctx context.Context, page *url.URL, jar http.CookieJar) (*dom.Document, error)
}

// HTTPLoader fetches the page with a plain GET.
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, page *url.URL, jar http.CookieJar) (*dom.Document, error) {
	hc := &http.Client{}
	if l.Client != nil {
		*hc = *l.Client
	}
	if jar != nil {
		hc.Jar = jar
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &request.NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &request.StatusError{Method: req.Method, URL: req.URL.String(), Code: resp.StatusCode}
	}
	return dom.Parse(resp.Body)
}

// FileLoader reads the page from a local file; the page URL only decides
// where backend requests go.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(_ context.Context, _ *url.URL, _ http.CookieJar) (*dom.Document, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return dom.Parse(f)
}
