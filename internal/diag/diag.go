// Package diag routes the page components' failure diagnostics. Failures
// are never shown to the visitor; outside production they are logged.
package diag

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"downloadpage/internal/env"
)

// Sink receives diagnostics. *log.Logger satisfies it.
type Sink interface {
	Printf(format string, v ...any)
}

// Discard drops everything.
var Discard Sink = log.New(io.Discard, "", 0)

// ForEnvironment returns logger outside production and Discard in it.
func ForEnvironment(e env.Environment, logger *log.Logger) Sink {
	if e.IsProduction() || logger == nil {
		return Discard
	}
	return logger
}

// Recorder keeps every line, for assertions.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Printf(format string, v ...any) {
	r.mu.Lock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
	r.mu.Unlock()
}

func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Contains reports whether any line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
