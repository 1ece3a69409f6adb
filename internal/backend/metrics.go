package backend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics wraps a backend with call timing and counters. The orchestrator
// wraps every backend it constructs so the health endpoint can report
// per-backend latency and error rates.
type Metrics struct {
	backend Backend
	name    string

	totalCalls  int64
	totalErrors int64

	mu           sync.RWMutex
	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
}

// WithMetrics wraps a backend with metrics collection and registers it in
// the global registry under its name.
func WithMetrics(b Backend) *Metrics {
	m := &Metrics{
		backend:    b,
		name:       b.Name(),
		minLatency: time.Hour,
	}
	register(m)
	return m
}

func (m *Metrics) Name() string    { return m.name }
func (m *Metrics) Available() bool { return m.backend.Available() }

// Attempt delegates to the wrapped backend and records the outcome.
func (m *Metrics) Attempt(ctx context.Context, req *Request) (*Candidate, error) {
	start := time.Now()
	cand, err := m.backend.Attempt(ctx, req)
	latency := time.Since(start)

	atomic.AddInt64(&m.totalCalls, 1)
	if err != nil {
		atomic.AddInt64(&m.totalErrors, 1)
		log.Debug().
			Str("backend", m.name).
			Dur("latency", latency).
			Err(err).
			Msg("backend attempt failed")
	} else {
		log.Debug().
			Str("backend", m.name).
			Dur("latency", latency).
			Msg("backend attempt succeeded")
	}

	m.mu.Lock()
	m.totalLatency += latency
	if latency < m.minLatency {
		m.minLatency = latency
	}
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	m.mu.Unlock()

	return cand, err
}

// Stats is a point-in-time view of one backend's counters.
type Stats struct {
	Calls      int64         `json:"calls"`
	Errors     int64         `json:"errors"`
	ErrorRate  float64       `json:"error_rate"`
	AvgLatency time.Duration `json:"avg_latency"`
	MinLatency time.Duration `json:"min_latency"`
	MaxLatency time.Duration `json:"max_latency"`
}

// Stats returns the current counters.
func (m *Metrics) Stats() Stats {
	calls := atomic.LoadInt64(&m.totalCalls)
	errs := atomic.LoadInt64(&m.totalErrors)

	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		Calls:      calls,
		Errors:     errs,
		MaxLatency: m.maxLatency,
	}
	if calls > 0 {
		s.ErrorRate = float64(errs) / float64(calls)
		s.AvgLatency = m.totalLatency / time.Duration(calls)
		s.MinLatency = m.minLatency
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ═══════════════════════════════════════════════════════════════════════════════

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Metrics)
)

func register(m *Metrics) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[m.name] = m
}

// AllStats returns a snapshot of every registered backend's counters.
func AllStats() map[string]Stats {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make(map[string]Stats, len(registry))
	for name, m := range registry {
		out[name] = m.Stats()
	}
	return out
}
