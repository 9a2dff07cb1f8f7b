package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"downloadpage/internal/env"
	"downloadpage/internal/request/requesttest"
)

func TestBuildConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		env  env.Environment
		base string
		mode Mode
	}{
		{env.Production, "/app", ""},
		{env.Dev, "http://localhost:9999/app", ModeCORS},
		{env.Docker, "http://localhost:9999/app", ModeCORS},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.env), func(t *testing.T) {
			cfg := BuildConfig(tc.env)
			if cfg.Credentials != CredentialsInclude {
				t.Fatalf("credentials = %q, want include", cfg.Credentials)
			}
			if cfg.Mode != tc.mode {
				t.Fatalf("mode = %q, want %q", cfg.Mode, tc.mode)
			}
			if cfg.BaseURLPrefix != tc.base {
				t.Fatalf("base = %q, want %q", cfg.BaseURLPrefix, tc.base)
			}
		})
	}
}

func TestEndpointIdempotent(t *testing.T) {
	t.Parallel()
	for _, e := range []env.Environment{env.Dev, env.Docker, env.Production} {
		a := Endpoint(e, "/recent-downloads")
		b := Endpoint(e, "/recent-downloads")
		if a != b {
			t.Fatalf("Endpoint(%s) changed between calls: %q vs %q", e, a, b)
		}
	}
	if got := Endpoint(env.Production, "/cookie"); got != "/app/cookie" {
		t.Fatalf("production endpoint = %q", got)
	}
	if got := Endpoint(env.Dev, "/cookie"); got != "http://localhost:9999/app/cookie" {
		t.Fatalf("dev endpoint = %q", got)
	}
}

func TestFactoryNewRequest(t *testing.T) {
	t.Parallel()
	prod, err := NewFactory("https://downloadkubernetes.com/index.html", "")
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	req, err := prod.NewRequest(context.Background(), http.MethodGet, "/forget", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.URL.String() != "https://downloadkubernetes.com/app/forget" {
		t.Fatalf("production url = %q", req.URL)
	}
	if req.Header.Get("Origin") != "" {
		t.Fatalf("production request should not carry Origin")
	}

	dev, err := NewFactory("http://localhost:3333/", "")
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	if dev.Env() != env.Dev {
		t.Fatalf("env = %s, want dev", dev.Env())
	}
	req, err = dev.NewRequest(context.Background(), http.MethodGet, "/cookie", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.URL.String() != "http://localhost:9999/app/cookie" {
		t.Fatalf("dev url = %q", req.URL)
	}
	if req.Header.Get("Origin") != "http://localhost:3333" || req.Header.Get("Sec-Fetch-Mode") != "cors" {
		t.Fatalf("dev request headers = %v", req.Header)
	}
	NoCache(req)
	if req.Header.Get("Cache-Control") != "no-cache" {
		t.Fatalf("NoCache did not set Cache-Control")
	}
}

func TestClientSendErrors(t *testing.T) {
	t.Parallel()
	f, err := NewFactory("http://localhost:8008/", "")
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	tr := requesttest.NewTransport().
		On("/app/cookie", requesttest.Reply{Status: http.StatusInternalServerError}).
		On("/app/forget", requesttest.Reply{Err: requesttest.ErrOffline}).
		On("/app/recent-downloads", requesttest.Reply{Body: "not json"})
	c := NewClient(f, nil, tr.Client())

	req, _ := f.NewRequest(context.Background(), http.MethodGet, "/cookie", nil)
	var se *StatusError
	if _, err := c.Send(req); !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("expected StatusError 500, got %v", err)
	}

	req, _ = f.NewRequest(context.Background(), http.MethodGet, "/forget", nil)
	var ne *NetworkError
	if _, err := c.Send(req); !errors.As(err, &ne) || !errors.Is(err, requesttest.ErrOffline) {
		t.Fatalf("expected NetworkError wrapping offline, got %v", err)
	}

	req, _ = f.NewRequest(context.Background(), http.MethodGet, "/recent-downloads", nil)
	resp, err := c.Send(req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	var out []string
	var pe *ParseError
	if err := DecodeJSON(resp, &out); !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestClientAttachesJar(t *testing.T) {
	t.Parallel()
	f, err := NewFactory("http://localhost:3333/", "")
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse("http://localhost:9999/")
	jar.SetCookies(u, []*http.Cookie{{Name: "downloadkubernetes", Value: "abc", Path: "/"}})
	tr := requesttest.NewTransport().On("/app/recent-downloads", requesttest.Reply{Body: "[]"})
	c := NewClient(f, jar, tr.Client())
	req, _ := f.NewRequest(context.Background(), http.MethodGet, "/recent-downloads", nil)
	if _, err := c.Discard(req); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	reqs := tr.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if got := reqs[0].Header.Get("Cookie"); got != "downloadkubernetes=abc" {
		t.Fatalf("cookie header = %q", got)
	}
}

func TestDecodeJSONWholeBody(t *testing.T) {
	t.Parallel()
	cases := []struct {
		body string
		ok   bool
	}{
		{`["/a","/b"]`, true},
		{" [\"/a\"]\n", true},
		{`["/a"] trailing`, false},
		{`["/a"]["/b"]`, false},
		{``, false},
	}
	for _, tc := range cases {
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(tc.body))}
		var out []string
		err := DecodeJSON(resp, &out)
		var pe *ParseError
		if tc.ok && err != nil {
			t.Fatalf("DecodeJSON(%q): %v", tc.body, err)
		}
		if !tc.ok && !errors.As(err, &pe) {
			t.Fatalf("DecodeJSON(%q) = %v, want ParseError", tc.body, err)
		}
	}
}
