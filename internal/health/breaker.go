// Package health tracks per-backend availability with circuit breakers.
// Each backend gets an independent breaker: consecutive failures trip it
// open, an open breaker rejects traffic until a cooldown passes, and a
// single trial request decides whether it closes again.
package health

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State is the current position of one circuit breaker.
type State string

const (
	// StateClosed passes traffic through normally.
	StateClosed State = "closed"
	// StateOpen rejects all traffic until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen admits exactly one trial request.
	StateHalfOpen State = "half_open"
)

// Config tunes the breaker behavior shared by all backends.
type Config struct {
	// FailureThreshold is the consecutive-failure count that trips a
	// closed breaker open.
	FailureThreshold int `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	// OpenFor is how long an open breaker rejects traffic before
	// admitting a half-open trial.
	OpenFor time.Duration `mapstructure:"open_for" yaml:"open_for"`
}

// DefaultConfig returns the stock breaker tuning.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		OpenFor:          5 * time.Minute,
	}
}

// Status is an observability snapshot of one breaker.
type Status struct {
	State               State         `json:"state"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	SinceTransition     time.Duration `json:"since_transition"`
	Attempts            uint64        `json:"attempts"`
	SuccessRate         float64       `json:"success_rate"`
}

type breaker struct {
	mu sync.Mutex

	state               State
	consecutiveFailures int
	changedAt           time.Time
	halfOpenInFlight    bool

	attempts  uint64
	successes uint64
}

// Monitor owns the breaker for every named backend. All methods are safe
// for concurrent use.
type Monitor struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	breakers map[string]*breaker
}

// NewMonitor builds a monitor with the given tuning. Zero or negative
// values fall back to defaults.
func NewMonitor(cfg Config) *Monitor {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = def.OpenFor
	}
	return &Monitor{
		cfg:      cfg,
		now:      time.Now,
		breakers: make(map[string]*breaker),
	}
}

func (m *Monitor) breakerFor(name string) *breaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.breakers[name]
	if !ok {
		b = &breaker{state: StateClosed, changedAt: m.now()}
		m.breakers[name] = b
	}
	return b
}

// Allow reports whether a request to the named backend should proceed.
// An open breaker whose cooldown has elapsed moves to half-open and admits
// exactly one caller; everyone else is rejected until that trial resolves.
func (m *Monitor) Allow(name string) bool {
	b := m.breakerFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if m.now().Sub(b.changedAt) < m.cfg.OpenFor {
			return false
		}
		b.state = StateHalfOpen
		b.changedAt = m.now()
		b.halfOpenInFlight = true
		log.Info().Str("backend", name).Msg("circuit breaker half-open, admitting trial")
		return true
	case StateHalfOpen:
		if b.halfOpenInFlight {
			return false
		}
		b.halfOpenInFlight = true
		return true
	}
	return false
}

// RecordSuccess reports a successful request to the named backend.
// It resolves a half-open trial by closing the breaker, and resets the
// consecutive-failure counter.
func (m *Monitor) RecordSuccess(name string) {
	b := m.breakerFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts++
	b.successes++
	b.consecutiveFailures = 0
	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.changedAt = m.now()
		b.halfOpenInFlight = false
		log.Info().Str("backend", name).Msg("circuit breaker closed after successful trial")
	}
}

// RecordFailure reports a failed request to the named backend. A failed
// half-open trial reopens the breaker and restarts the cooldown; in the
// closed state the failure counts toward the trip threshold.
func (m *Monitor) RecordFailure(name string) {
	b := m.breakerFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts++
	b.consecutiveFailures++

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.changedAt = m.now()
		b.halfOpenInFlight = false
		log.Warn().Str("backend", name).Msg("circuit breaker reopened after failed trial")
	case StateClosed:
		if b.consecutiveFailures >= m.cfg.FailureThreshold {
			b.state = StateOpen
			b.changedAt = m.now()
			log.Warn().
				Str("backend", name).
				Int("failures", b.consecutiveFailures).
				Msg("circuit breaker opened")
		}
	}
}

// Snapshot returns the current status of every known breaker, keyed by
// backend name.
func (m *Monitor) Snapshot() map[string]Status {
	m.mu.Lock()
	names := make([]string, 0, len(m.breakers))
	for name := range m.breakers {
		names = append(names, name)
	}
	m.mu.Unlock()

	out := make(map[string]Status, len(names))
	for _, name := range names {
		b := m.breakerFor(name)
		b.mu.Lock()
		st := Status{
			State:               b.state,
			ConsecutiveFailures: b.consecutiveFailures,
			SinceTransition:     m.now().Sub(b.changedAt),
			Attempts:            b.attempts,
		}
		if b.attempts > 0 {
			st.SuccessRate = float64(b.successes) / float64(b.attempts)
		}
		b.mu.Unlock()
		out[name] = st
	}
	return out
}
