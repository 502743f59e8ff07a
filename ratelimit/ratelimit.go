// Package ratelimit bounds how often grafink hits a given Grafana host.
// Accounting is a fixed 60 second window with a per-source counter; Admit
// never blocks, it either records the request or reports the retry delay.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/juju/errors"
)

// Window is the fixed accounting window length.
const Window = 60 * time.Second

// Error is a rejected admission. RetryAfter is the whole number of seconds
// until the source's window resets, never below 1.
type Error struct {
	URL        string
	RetryAfter int
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %ds", e.URL, e.RetryAfter)
}

type window struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// Limiter tracks one window per source URL. Windows are created lazily; the
// outer mutex only guards the registry, each window carries its own lock so
// sources never contend with each other.
type Limiter struct {
	limit   int
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// New returns a limiter admitting limit requests per source per window.
// A limit of zero or less disables limiting entirely.
func New(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *Limiter) Enabled() bool {
	return l.limit > 0
}

// Admit records one request against url's current window. Once the budget is
// spent it rejects with a *Error carrying the retry delay.
func (l *Limiter) Admit(url string) error {
	if l.limit <= 0 {
		return nil
	}

	w := l.window(url)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if w.start.IsZero() || now.Sub(w.start) >= Window {
		w.start = now
		w.count = 0
	}
	if w.count < l.limit {
		w.count++
		return nil
	}

	retry := int(math.Ceil((Window - now.Sub(w.start)).Seconds()))
	if retry < 1 {
		retry = 1
	}
	return &Error{URL: url, RetryAfter: retry}
}

func (l *Limiter) window(url string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[url]
	if !ok {
		w = &window{}
		l.windows[url] = w
	}
	return w
}

// IsLimit reports whether err, possibly annotated, is a rate-limit
// rejection, returning the typed rejection when it is.
func IsLimit(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	le, ok := errors.Cause(err).(*Error)
	return le, ok
}
