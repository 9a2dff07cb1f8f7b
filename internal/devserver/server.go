// Package devserver is an in-memory stand-in for the download site's
// backend, for running the page logic locally.
package devserver

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName       = "downloadkubernetes"
	cookieExpiryDays = 30
	defaultPrefix    = "/app"
	defaultOrigin    = "http://localhost:3333"
	defaultRecent    = 5
)

// Config describes server wiring and runtime behaviour.
type Config struct {
	// Prefix is where the API is mounted.
	Prefix string
	// DevOrigin, when set, is allowed to call with credentials.
	DevOrigin   string
	RecentLimit int
	PageHTML    string
	Logger      *log.Logger
	Clock       func() time.Time
	NewID       func() string
}

// DefaultConfig populates configuration from environment variables.
func DefaultConfig() Config {
	cfg := Config{
		Prefix:      defaultPrefix,
		DevOrigin:   strings.TrimSpace(os.Getenv("DK_DEV_ORIGIN")),
		RecentLimit: defaultRecent,
		PageHTML:    samplePage,
		Logger:      log.Default(),
		Clock:       time.Now,
	}
	if cfg.DevOrigin == "" {
		cfg.DevOrigin = defaultOrigin
	}
	if s := strings.TrimSpace(os.Getenv("DK_RECENT_LIMIT")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.RecentLimit = n
		}
	}
	return cfg
}

// Server exposes the backend endpoints the page talks to.
type Server struct {
	cfg      Config
	mux      *http.ServeMux
	handler  http.Handler
	logger   *log.Logger
	sessions *sessionStore
	clock    func() time.Time
	newID    func() string
}

// New wires a server with the provided configuration.
func New(cfg Config) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecent
	}
	if cfg.PageHTML == "" {
		cfg.PageHTML = samplePage
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString() }
	}
	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		logger:   cfg.Logger,
		sessions: newSessionStore(cfg.RecentLimit),
		clock:    cfg.Clock,
		newID:    cfg.NewID,
	}
	s.registerRoutes()
	s.handler = withLogging(s.logger, s.withCORS(s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	p := s.cfg.Prefix
	s.mux.HandleFunc(p+"/cookie", s.handleCookie)
	s.mux.HandleFunc(p+"/forget", s.handleForget)
	s.mux.HandleFunc(p+"/recent-downloads", s.cookieRequired(s.handleRecent))
	s.mux.HandleFunc(p+"/link-copied", s.handleLinkCopied)
	s.mux.HandleFunc("/", s.handlePage)
}

// withCORS lets the configured development origin call with credentials.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.cfg.DevOrigin == "" || origin != s.cfg.DevOrigin {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
