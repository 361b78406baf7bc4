package emitter

import (
	"sync"
	"time"
)

// Gate limits an emitter to one send per interval. A zero interval admits
// every call.
type Gate struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	sent bool
}

func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval, now: time.Now}
}

// WithClock replaces the time source.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Interval returns the configured interval.
func (g *Gate) Interval() time.Duration { return g.interval }

// Allow reports whether a send may happen now and, if so, records it.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.sent && now.Before(g.last.Add(g.interval)) {
		return false
	}
	g.last = now
	g.sent = true
	return true
}
