// Package browser loads the download page in headless Chrome, for pages
// whose table is filled in by scripts.
package browser

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"downloadpage/internal/dom"
)

const defaultTimeout = 25 * time.Second

// Loader renders pages in one shared Chrome allocator.
type Loader struct {
	allocator context.Context
	cancel    context.CancelFunc
	logger    *log.Logger
	// Timeout bounds one navigation. Zero means no bound.
	Timeout time.Duration
}

func New(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-extensions", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Loader{allocator: allocCtx, cancel: cancel, logger: logger, Timeout: defaultTimeout}
}

func (l *Loader) Close() error {
	if l.cancel != nil {
		l.cancel()
	}
	return nil
}

// Load navigates to page with jar's cookies, waits for the body and
// returns the rendered document. Cookies the page set come back into jar.
func (l *Loader) Load(ctx context.Context, page *url.URL, jar http.CookieJar) (*dom.Document, error) {
	if page == nil || strings.TrimSpace(page.String()) == "" {
		return nil, fmt.Errorf("browser load: empty page url")
	}
	taskCtx, cancelBrowser := chromedp.NewContext(l.allocator)
	defer cancelBrowser()

	var cancel context.CancelFunc
	taskCtx, cancel = context.WithCancel(taskCtx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-taskCtx.Done():
		}
	}()
	if l.Timeout > 0 {
		var tcancel context.CancelFunc
		taskCtx, tcancel = context.WithTimeout(taskCtx, l.Timeout)
		defer tcancel()
	}

	target := page.String()
	actions := []chromedp.Action{network.Enable()}
	if jar != nil {
		if params := cookieParams(jar.Cookies(page), page); len(params) > 0 {
			actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
				return network.SetCookies(params).Do(ctx)
			}))
		}
	}

	var finalURL, content string
	var browserCookies []*network.Cookie
	actions = append(actions,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			u := finalURL
			if u == "" {
				u = target
			}
			var err error
			browserCookies, err = network.GetCookies().WithUrls([]string{u}).Do(ctx)
			return err
		}),
	)
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser load %s: %w", target, err)
	}

	if jar != nil {
		if hc := httpCookies(browserCookies); len(hc) > 0 {
			jar.SetCookies(page, hc)
		}
	}
	l.logger.Printf("LOAD js %s -> %s (%d bytes, %d cookies)", target, finalURL, len(content), len(browserCookies))
	return dom.ParseString(content)
}

func cookieParams(cs []*http.Cookie, u *url.URL) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cs))
	for _, c := range cs {
		if c == nil || c.Name == "" {
			continue
		}
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   cookieDomain(c, u),
			Path:     cookiePath(c),
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if !c.Expires.IsZero() {
			exp := cdp.TimeSinceEpoch(c.Expires.UTC())
			p.Expires = &exp
		}
		params = append(params, p)
	}
	return params
}

func httpCookies(cs []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cs))
	for _, c := range cs {
		if hc := cookieFromNetwork(c); hc != nil {
			out = append(out, hc)
		}
	}
	return out
}

func cookieFromNetwork(c *network.Cookie) *http.Cookie {
	if c == nil {
		return nil
	}
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	// Host-only cookies come back with the bare host; a leading dot marks
	// a domain cookie.
	if strings.HasPrefix(c.Domain, ".") {
		hc.Domain = c.Domain
	}
	if !c.Session && c.Expires > 0 {
		sec, frac := math.Modf(c.Expires)
		hc.Expires = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	switch c.SameSite {
	case network.CookieSameSiteLax:
		hc.SameSite = http.SameSiteLaxMode
	case network.CookieSameSiteStrict:
		hc.SameSite = http.SameSiteStrictMode
	case network.CookieSameSiteNone:
		hc.SameSite = http.SameSiteNoneMode
	}
	return hc
}

func cookieDomain(c *http.Cookie, u *url.URL) string {
	if c.Domain != "" {
		return c.Domain
	}
	if u != nil {
		return u.Hostname()
	}
	return ""
}

func cookiePath(c *http.Cookie) string {
	if c.Path != "" {
		return c.Path
	}
	return "/"
}
