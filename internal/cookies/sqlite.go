package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cookies between runs so a remembered visitor stays
// remembered across page loads of the CLI.
type SQLiteStore struct {
	db     *sql.DB
	page   *url.URL
	logger *log.Logger
	clock  func() time.Time
}

// OpenSQLite opens (creating if needed) the cookie database at path.
func OpenSQLite(ctx context.Context, path string, page *url.URL, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cookie store dir: %w", err)
		}
	}
	// modernc.org/sqlite registers itself as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// busy_timeout and synchronous are per connection; one connection
	// keeps them in force for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS cookies (
		domain TEXT NOT NULL,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		host_only INTEGER NOT NULL,
		secure INTEGER NOT NULL,
		expires INTEGER NOT NULL,
		PRIMARY KEY (domain, path, name)
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cookie store: %w", err)
	}
	u := *page
	return &SQLiteStore{db: db, page: &u, logger: logger, clock: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SetCookies(u *url.URL, cs []*http.Cookie) {
	ctx := context.Background()
	now := s.clock()
	for _, c := range cs {
		if c == nil || c.Name == "" {
			continue
		}
		domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
		hostOnly := domain == ""
		if hostOnly {
			domain = strings.ToLower(u.Hostname())
		}
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		var expires int64
		switch {
		case c.MaxAge < 0:
			expires = -1
		case c.MaxAge > 0:
			expires = now.Add(time.Duration(c.MaxAge) * time.Second).Unix()
		case !c.Expires.IsZero():
			expires = c.Expires.Unix()
			if !c.Expires.After(now) {
				expires = -1
			}
		}
		if expires < 0 {
			if _, err := s.db.ExecContext(ctx,
				`DELETE FROM cookies WHERE domain = ? AND path = ? AND name = ?`,
				domain, path, c.Name); err != nil {
				s.logger.Printf("COOKIE delete %s: %v", c.Name, err)
			}
			continue
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO cookies (domain, path, name, value, host_only, secure, expires)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(domain, path, name) DO UPDATE SET
				value = excluded.value,
				host_only = excluded.host_only,
				secure = excluded.secure,
				expires = excluded.expires`,
			domain, path, c.Name, c.Value, boolToInt(hostOnly), boolToInt(c.Secure), expires); err != nil {
			s.logger.Printf("COOKIE store %s: %v", c.Name, err)
		}
	}
}

type storedCookie struct {
	name, value, domain, path string
	hostOnly, secure          bool
	expires                   int64
}

func (s *SQLiteStore) Cookies(u *url.URL) []*http.Cookie {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT name, value, domain, path, host_only, secure, expires FROM cookies`)
	if err != nil {
		s.logger.Printf("COOKIE query: %v", err)
		return nil
	}
	defer rows.Close()
	host := strings.ToLower(u.Hostname())
	now := s.clock().Unix()
	var matched []storedCookie
	for rows.Next() {
		var sc storedCookie
		var hostOnly, secure int
		if err := rows.Scan(&sc.name, &sc.value, &sc.domain, &sc.path, &hostOnly, &secure, &sc.expires); err != nil {
			s.logger.Printf("COOKIE scan: %v", err)
			return nil
		}
		sc.hostOnly, sc.secure = hostOnly == 1, secure == 1
		if sc.expires > 0 && sc.expires <= now {
			continue
		}
		if sc.secure && u.Scheme != "https" {
			continue
		}
		if !domainMatch(host, sc.domain, sc.hostOnly) || !pathMatch(u.Path, sc.path) {
			continue
		}
		matched = append(matched, sc)
	}
	sort.SliceStable(matched, func(i, j int) bool { return len(matched[i].path) > len(matched[j].path) })
	out := make([]*http.Cookie, 0, len(matched))
	for _, sc := range matched {
		out = append(out, &http.Cookie{Name: sc.name, Value: sc.value})
	}
	return out
}

func (s *SQLiteStore) String() string { return join(s.Cookies(s.page)) }

func (s *SQLiteStore) Has(name string) bool { return Present(s.String(), name) }

func (s *SQLiteStore) Get(name string) (string, bool) { return Lookup(s.String(), name) }

func (s *SQLiteStore) Set(c *http.Cookie) { s.SetCookies(s.page, []*http.Cookie{c}) }

func (s *SQLiteStore) Clear(name string) {
	s.SetCookies(s.page, []*http.Cookie{
		expired(name, "/"),
		expired(name, defaultPath(s.page.Path)),
	})
}

func domainMatch(host, domain string, hostOnly bool) bool {
	if host == domain {
		return true
	}
	return !hostOnly && strings.HasSuffix(host, "."+domain)
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == "" {
		reqPath = "/"
	}
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
