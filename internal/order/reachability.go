package order

import (
	"context"
	"sync"
	"time"
)

// Reachability answers whether the durable store is worth attempting.
// It is injected into the service so tests can force either direction.
type Reachability interface {
	Reachable() bool
}

// StaticChecker always reports a fixed answer.
type StaticChecker bool

func (s StaticChecker) Reachable() bool { return bool(s) }

// PingChecker probes the durable store once with a bounded timeout and
// caches the answer for the checker's lifetime. Paying the probe exactly
// once keeps a dead store from costing a timeout on every submission, at
// the price of not noticing recovery until a new checker is built.
type PingChecker struct {
	Ping    func(ctx context.Context) error
	Timeout time.Duration

	once sync.Once
	up   bool
}

func NewPingChecker(ping func(ctx context.Context) error, timeout time.Duration) *PingChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PingChecker{Ping: ping, Timeout: timeout}
}

func (p *PingChecker) Reachable() bool {
	p.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		p.up = p.Ping(ctx) == nil
	})
	return p.up
}
