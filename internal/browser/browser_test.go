package browser

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestCookieParamsDefaults(t *testing.T) {
	u, _ := url.Parse("https://www.downloadkubernetes.com/")
	exp := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	params := cookieParams([]*http.Cookie{
		{Name: "downloadkubernetes", Value: "abc", Expires: exp},
		{Name: ""},
		{Name: "other", Value: "1", Domain: ".downloadkubernetes.com", Path: "/app"},
	}, u)
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if params[0].Domain != "www.downloadkubernetes.com" || params[0].Path != "/" {
		t.Fatalf("unexpected defaults %+v", params[0])
	}
	if params[0].Expires == nil || !params[0].Expires.Time().Equal(exp) {
		t.Fatalf("expiry not carried: %+v", params[0].Expires)
	}
	if params[1].Domain != ".downloadkubernetes.com" || params[1].Path != "/app" {
		t.Fatalf("explicit domain/path lost: %+v", params[1])
	}
}

func TestCookieFromNetwork(t *testing.T) {
	cases := []struct {
		name   string
		in     *network.Cookie
		domain string
		same   http.SameSite
		expiry bool
	}{
		{
			name:   "host only session",
			in:     &network.Cookie{Name: "a", Value: "1", Domain: "localhost", Path: "/", Session: true},
			domain: "",
		},
		{
			name:   "domain cookie with expiry",
			in:     &network.Cookie{Name: "b", Value: "2", Domain: ".example.com", Path: "/", Expires: 1893456000, SameSite: network.CookieSameSiteLax},
			domain: ".example.com",
			same:   http.SameSiteLaxMode,
			expiry: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			hc := cookieFromNetwork(tc.in)
			if hc == nil {
				t.Fatalf("nil cookie")
			}
			if hc.Name != tc.in.Name || hc.Value != tc.in.Value {
				t.Fatalf("name/value = %s=%s", hc.Name, hc.Value)
			}
			if hc.Domain != tc.domain {
				t.Fatalf("domain = %q, want %q", hc.Domain, tc.domain)
			}
			if hc.SameSite != tc.same {
				t.Fatalf("samesite = %v, want %v", hc.SameSite, tc.same)
			}
			if hc.Expires.IsZero() == tc.expiry {
				t.Fatalf("expires = %v, want set=%v", hc.Expires, tc.expiry)
			}
		})
	}
	if cookieFromNetwork(nil) != nil {
		t.Fatalf("nil input should give nil")
	}
}
