// Package cookies holds the page's cookie store: the one shared mutable
// resource between the remember-me toggle and the recents lookup.
package cookies

import (
	"net/http"
	"strings"
)

// SessionName is the cookie that marks a remembered visitor.
const SessionName = "downloadkubernetes"

// Store is what the page components need from document.cookie. It is also
// an http.CookieJar so outbound calls made with credentials share it.
type Store interface {
	http.CookieJar
	// String renders the cookies visible to the page as "a=1; b=2".
	String() string
	Has(name string) bool
	Get(name string) (string, bool)
	// Set writes a cookie for the page, like assigning document.cookie.
	Set(c *http.Cookie)
	// Clear rewrites name with an expiry in the past.
	Clear(name string)
}

// Present reports whether the document cookie string carries a cookie
// with exactly this name. A value that merely contains the name does not
// count.
func Present(cookieString, name string) bool {
	_, ok := Lookup(cookieString, name)
	return ok
}

// Lookup returns the value of name in a document cookie string.
func Lookup(cookieString, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, part := range strings.Split(cookieString, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		if strings.TrimSpace(k) == name {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func join(cs []*http.Cookie) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func expired(name, path string) *http.Cookie {
	return &http.Cookie{Name: name, Value: "", Path: path, MaxAge: -1}
}

// defaultPath is the RFC 6265 default-path of u.
func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
