package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// JarStore keeps cookies in memory for one page, the way a browser tab
// would. Cookies set by the backend on another port of the same host are
// visible to the page, as cookie scoping ignores ports.
type JarStore struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	page *url.URL
}

func NewJarStore(page *url.URL) *JarStore {
	jar, _ := cookiejar.New(nil)
	u := *page
	return &JarStore{jar: jar, page: &u}
}

func (s *JarStore) SetCookies(u *url.URL, cs []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cs)
}

func (s *JarStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

func (s *JarStore) String() string {
	return join(s.Cookies(s.page))
}

func (s *JarStore) Has(name string) bool {
	return Present(s.String(), name)
}

func (s *JarStore) Get(name string) (string, bool) {
	return Lookup(s.String(), name)
}

func (s *JarStore) Set(c *http.Cookie) {
	s.SetCookies(s.page, []*http.Cookie{c})
}

func (s *JarStore) Clear(name string) {
	s.SetCookies(s.page, []*http.Cookie{
		expired(name, "/"),
		expired(name, defaultPath(s.page.Path)),
	})
}
