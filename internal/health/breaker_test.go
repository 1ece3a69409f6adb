package health

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance breaker time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	at  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

func newTestMonitor(cfg Config) (*Monitor, *fakeClock) {
	m := NewMonitor(cfg)
	clock := &fakeClock{at: time.Unix(1700000000, 0)}
	m.now = clock.now
	return m, clock
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	m, _ := newTestMonitor(Config{FailureThreshold: 5, OpenFor: 5 * time.Minute})

	for i := 0; i < 4; i++ {
		require.True(t, m.Allow("gemini"), "attempt %d should pass", i)
		m.RecordFailure("gemini")
	}
	assert.Equal(t, StateClosed, m.Snapshot()["gemini"].State)

	require.True(t, m.Allow("gemini"))
	m.RecordFailure("gemini")

	assert.Equal(t, StateOpen, m.Snapshot()["gemini"].State)
	assert.False(t, m.Allow("gemini"), "open breaker must reject traffic")
}

func TestBreakerHalfOpensAfterCooldown(t *testing.T) {
	m, clock := newTestMonitor(Config{FailureThreshold: 2, OpenFor: 5 * time.Minute})

	m.RecordFailure("openai")
	m.RecordFailure("openai")
	require.False(t, m.Allow("openai"))

	clock.advance(4 * time.Minute)
	assert.False(t, m.Allow("openai"), "cooldown not yet elapsed")

	clock.advance(2 * time.Minute)
	assert.True(t, m.Allow("openai"), "first caller after cooldown gets the trial")
	assert.Equal(t, StateHalfOpen, m.Snapshot()["openai"].State)
}

func TestHalfOpenAdmitsSingleTrial(t *testing.T) {
	m, clock := newTestMonitor(Config{FailureThreshold: 1, OpenFor: time.Minute})

	m.RecordFailure("ollama")
	clock.advance(2 * time.Minute)

	var admitted int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Allow("ollama") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, admitted, "exactly one trial request may pass")
}

func TestSuccessfulTrialClosesBreaker(t *testing.T) {
	m, clock := newTestMonitor(Config{FailureThreshold: 1, OpenFor: time.Minute})

	m.RecordFailure("gemini")
	clock.advance(2 * time.Minute)
	require.True(t, m.Allow("gemini"))

	m.RecordSuccess("gemini")
	snap := m.Snapshot()["gemini"]
	assert.Equal(t, StateClosed, snap.State)
	assert.Zero(t, snap.ConsecutiveFailures)
	assert.True(t, m.Allow("gemini"))
}

func TestFailedTrialReopensBreaker(t *testing.T) {
	m, clock := newTestMonitor(Config{FailureThreshold: 1, OpenFor: time.Minute})

	m.RecordFailure("gemini")
	clock.advance(2 * time.Minute)
	require.True(t, m.Allow("gemini"))

	m.RecordFailure("gemini")
	assert.Equal(t, StateOpen, m.Snapshot()["gemini"].State)
	assert.False(t, m.Allow("gemini"), "cooldown restarts after failed trial")

	clock.advance(2 * time.Minute)
	assert.True(t, m.Allow("gemini"))
}

func TestSuccessResetsFailureCount(t *testing.T) {
	m, _ := newTestMonitor(Config{FailureThreshold: 3, OpenFor: time.Minute})

	m.RecordFailure("gemini")
	m.RecordFailure("gemini")
	m.RecordSuccess("gemini")
	m.RecordFailure("gemini")
	m.RecordFailure("gemini")

	// Never three consecutive failures, so the breaker stays closed.
	assert.Equal(t, StateClosed, m.Snapshot()["gemini"].State)
}

func TestSnapshotSuccessRate(t *testing.T) {
	m, _ := newTestMonitor(DefaultConfig())

	m.RecordSuccess("gemini")
	m.RecordSuccess("gemini")
	m.RecordFailure("gemini")
	m.RecordSuccess("gemini")

	snap := m.Snapshot()["gemini"]
	assert.EqualValues(t, 4, snap.Attempts)
	assert.InDelta(t, 0.75, snap.SuccessRate, 1e-9)
}

func TestBreakersAreIndependent(t *testing.T) {
	m, _ := newTestMonitor(Config{FailureThreshold: 1, OpenFor: time.Minute})

	m.RecordFailure("gemini")
	assert.False(t, m.Allow("gemini"))
	assert.True(t, m.Allow("openai"), "one backend tripping must not affect another")
}
