package env

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment is the deployment the page talks to.
type Environment string

const (
	Dev        Environment = "dev"
	Docker     Environment = "docker"
	Production Environment = "production"
)

const (
	localHostname = "localhost"
	dockerPort    = "8008"
)

// Location is the part of the page location the resolver looks at.
type Location struct {
	Hostname string
	Port     string
}

// LocationFromURL splits a page URL into hostname and port. The port is
// empty when the URL does not spell one out, like window.location.port.
func LocationFromURL(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("parse page url: %w", err)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("page url %q has no host", raw)
	}
	return Location{Hostname: strings.ToLower(u.Hostname()), Port: u.Port()}, nil
}

// Resolve classifies the page location. A non-empty override always wins.
func Resolve(loc Location, override Environment) Environment {
	if override != "" {
		return override
	}
	if loc.Hostname != localHostname {
		return Production
	}
	if loc.Port == dockerPort {
		return Docker
	}
	return Dev
}

// Parse validates an override value. The empty string means no override.
func Parse(s string) (Environment, error) {
	switch e := Environment(strings.ToLower(strings.TrimSpace(s))); e {
	case "", Dev, Docker, Production:
		return e, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want dev, docker or production)", s)
	}
}

func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) String() string { return string(e) }
