package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// handleCookie issues a session cookie, or refreshes the one presented.
func (s *Server) handleCookie(w http.ResponseWriter, r *http.Request) {
	id := ""
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		id = c.Value
	} else {
		id = s.newID()
		s.logger.Printf("SESSION created %s", id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		Expires:  s.clock().Add(cookieExpiryDays * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleForget expires the session cookie and drops its history.
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cookieName); err == nil {
		s.sessions.Forget(c.Value)
		s.logger.Printf("SESSION forgotten %s", c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

type cookieRequiredHandler func(w http.ResponseWriter, r *http.Request, c *http.Cookie)

// cookieRequired answers 403 to requests without a session.
func (s *Server) cookieRequired(fn cookieRequiredHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookieName)
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		fn(w, r, c)
	}
}

func (s *Server) handleRecent(w http.ResponseWriter, _ *http.Request, c *http.Cookie) {
	out, err := json.Marshal(s.sessions.Recent(c.Value))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	_, _ = w.Write(out)
}

type copyLinkRequest struct {
	URL string
}

// handleLinkCopied records a copied link against the caller's session.
// Visitors without a session are accepted and not recorded.
func (s *Server) handleLinkCopied(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	var clr copyLinkRequest
	if err := json.Unmarshal(body, &clr); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := url.Parse(clr.URL); err != nil || clr.URL == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if c, err := r.Cookie(cookieName); err == nil {
		s.sessions.Record(c.Value, clr.URL)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.cfg.PageHTML)))
	_, _ = io.WriteString(w, s.cfg.PageHTML)
}
