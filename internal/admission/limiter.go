// Package admission enforces per-route request-rate ceilings over time
// windows keyed by client identity. Counters are sharded per limiter and
// swept at window boundaries rather than by a wall-clock cron, so the maps
// cannot grow without bound.
package admission

import (
	"sync"
	"time"
)

// Config describes one protected route class.
type Config struct {
	// Window is the admission window duration.
	Window time.Duration
	// Max is the number of attempts admitted per window and client.
	Max int
	// CountSuccesses controls whether requests that ultimately succeed
	// count against the limit. When false the caller must report success
	// back via Forgive after the downstream handler completes.
	CountSuccesses bool
}

// Decision is the outcome of an admission check.
type Decision struct {
	// OK reports whether the request is admitted.
	OK bool
	// RetryAfter hints how long the client should wait before retrying.
	// Only meaningful when OK is false.
	RetryAfter time.Duration
}

type window struct {
	start time.Time
	count int
}

// Limiter is one named admission counter. Safe for concurrent use.
type Limiter struct {
	name string
	cfg  Config

	mu        sync.Mutex
	clients   map[string]*window
	lastSweep time.Time

	now func() time.Time
}

// New builds a limiter for the given route class.
func New(name string, cfg Config) *Limiter {
	return &Limiter{
		name:    name,
		cfg:     cfg,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// Name identifies the limiter in metrics and logs.
func (l *Limiter) Name() string { return l.name }

// Config returns the limiter's configuration.
func (l *Limiter) Config() Config { return l.cfg }

// Admit counts an attempt for the client and decides whether it may proceed.
func (l *Limiter) Admit(clientKey string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	w, ok := l.clients[clientKey]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.clients[clientKey] = w
	}
	w.count++
	if w.count > l.cfg.Max {
		return Decision{RetryAfter: w.start.Add(l.cfg.Window).Sub(now)}
	}
	return Decision{OK: true}
}

// Forgive uncounts one attempt for the client. Called when the request's
// final outcome was a success and the limiter only counts failures.
func (l *Limiter) Forgive(clientKey string) {
	if l.cfg.CountSuccesses {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.clients[clientKey]; ok && w.count > 0 {
		w.count--
	}
}

// sweepLocked drops windows that have fully elapsed. Runs at most once per
// window duration so Admit stays O(1) amortized.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.Window {
		return
	}
	l.lastSweep = now
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.clients, key)
		}
	}
}
