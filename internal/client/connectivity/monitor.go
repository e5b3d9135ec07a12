// Package connectivity watches whether the server is reachable.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

const pingTimeout = 3 * time.Second

// Pinger is anything that can cheaply check the server.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Listener func(online bool)

type Monitor struct {
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger

	mu        sync.Mutex
	online    bool
	known     bool
	listeners []Listener
}

func NewMonitor(p Pinger, interval time.Duration, l logging.Logger) *Monitor {
	return &Monitor{
		pinger:   p,
		interval: interval,
		logger:   l.With("module", "connectivity"),
	}
}

// Subscribe registers fn for online/offline transitions.
func (m *Monitor) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Run probes immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check pings once and notifies listeners if reachability changed. The
// first result is always reported.
func (m *Monitor) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.pinger.Ping(pctx)
	cancel()
	online := err == nil

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.online = online
	m.known = true
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	if !changed {
		return online
	}
	if online {
		m.logger.Info(ctx, "server reachable")
	} else {
		m.logger.Warn(ctx, "server unreachable", "error", err)
	}
	for _, fn := range listeners {
		fn(online)
	}
	return online
}
