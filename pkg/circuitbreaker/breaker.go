package circuitbreaker

import (
	"sync"
	"time"
)

// State of the breaker.
type State int

const (
	StateClosed   State = iota // requests flow normally
	StateHalfOpen              // probing whether the upstream recovered
	StateOpen                  // requests are rejected without being attempted
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	}
	return "unknown"
}

// Config sets the breaker thresholds.
type Config struct {
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // how long to stay open before probing
	HalfOpenMaxCalls int           // probe budget while half-open
}

// CircuitBreaker guards calls to a flaky upstream. Callers ask Allow()
// before each call and report Success()/Failure() afterwards.
type CircuitBreaker struct {
	mu              sync.Mutex
	cfg             Config
	state           State
	failures        int
	halfOpenCalls   int
	lastStateChange time.Time
}

// New creates a closed breaker.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:             cfg,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Allow reports whether a call may proceed right now.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastStateChange) >= cb.cfg.ResetTimeout {
			cb.transition(StateHalfOpen)
			cb.halfOpenCalls = 1
			return true
		}
		return false
	case StateHalfOpen:
		if cb.halfOpenCalls < cb.cfg.HalfOpenMaxCalls {
			cb.halfOpenCalls++
			return true
		}
		return false
	}

	return false
}

// Success reports a successful call, closing the breaker from half-open.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.transition(StateClosed)
		cb.failures = 0
	case StateClosed:
		cb.failures = 0
	}
}

// Failure reports a failed call. Enough consecutive failures open the
// breaker; any failure while half-open re-opens it immediately.
func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.transition(StateOpen)
	}
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker closed and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transition(StateClosed)
	cb.failures = 0
	cb.halfOpenCalls = 0
}

// GetMetrics returns a snapshot for the admin API.
func (cb *CircuitBreaker) GetMetrics() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":             cb.state.String(),
		"failure_count":     cb.failures,
		"failure_threshold": cb.cfg.FailureThreshold,
		"reset_timeout":     cb.cfg.ResetTimeout.String(),
		"last_state_change": cb.lastStateChange,
		"time_in_state":     time.Since(cb.lastStateChange).String(),
	}
}

// transition must be called with cb.mu held.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}
	cb.state = next
	cb.lastStateChange = time.Now()
}
