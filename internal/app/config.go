// Package app assembles one download page: it resolves the environment,
// loads the document and wires the remember-me button, the recent
// downloads table and the copy beacon around a shared cookie store.
package app

import (
	"log"
	"net/http"
	"os"
	"strings"

	"downloadpage/internal/dom"
	"downloadpage/internal/env"
	"downloadpage/internal/preference"
)

const (
	defaultPageURL     = "http://localhost:3333/"
	defaultMarkerStyle = "margin-left: 0.5em; font-weight: bold"
)

// Config describes which page to load and how.
type Config struct {
	// PageURL is the page location the environment is resolved from.
	PageURL string
	// Env overrides environment resolution when set.
	Env      env.Environment
	ButtonID string
	Table    dom.TableOptions
	// StatePath is the SQLite cookie database. Empty keeps cookies in
	// memory for the life of the process.
	StatePath string
	// JS renders the page in headless Chrome before reading it.
	JS bool
	// Loader, when set, replaces the loader chosen from JS.
	Loader     Loader
	Logger     *log.Logger
	HTTPClient *http.Client
}

// DefaultConfig populates configuration from environment variables.
func DefaultConfig() Config {
	cfg := Config{
		PageURL:   strings.TrimSpace(os.Getenv("DK_PAGE_URL")),
		Env:       env.Environment(strings.ToLower(strings.TrimSpace(os.Getenv("DK_ENV")))),
		ButtonID:  preference.ButtonID,
		Table:     dom.DefaultTableOptions(),
		StatePath: strings.TrimSpace(os.Getenv("DK_STATE")),
		Logger:    log.Default(),
	}
	if cfg.PageURL == "" {
		cfg.PageURL = defaultPageURL
	}
	cfg.Table.MarkerStyle = defaultMarkerStyle
	if v, ok := os.LookupEnv("DK_MARKER_STYLE"); ok {
		cfg.Table.MarkerStyle = strings.TrimSpace(v)
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DK_JS"))) {
	case "1", "true", "yes", "on":
		cfg.JS = true
	}
	return cfg
}

func (cfg Config) withDefaults() (Config, error) {
	if strings.TrimSpace(cfg.PageURL) == "" {
		cfg.PageURL = defaultPageURL
	}
	if cfg.Env != "" {
		e, err := env.Parse(string(cfg.Env))
		if err != nil {
			return cfg, err
		}
		cfg.Env = e
	}
	if cfg.ButtonID == "" {
		cfg.ButtonID = preference.ButtonID
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return cfg, nil
}
