package circuitbreaker

import (
	"testing"
	"time"
)

func newTestBreaker(threshold int, resetTimeout time.Duration) *CircuitBreaker {
	return New(Config{
		FailureThreshold: threshold,
		ResetTimeout:     resetTimeout,
		HalfOpenMaxCalls: 1,
	})
}

func TestBreakerStartsClosed(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	if cb.GetState() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.GetState())
	}
	if !cb.Allow() {
		t.Error("closed breaker must allow calls")
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	cb.Failure()
	cb.Failure()
	if cb.GetState() != StateClosed {
		t.Fatal("breaker opened below threshold")
	}

	cb.Failure()
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open after 3 failures", cb.GetState())
	}
	if cb.Allow() {
		t.Error("open breaker must reject calls")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	cb.Failure()
	cb.Failure()
	cb.Success()
	cb.Failure()
	cb.Failure()

	if cb.GetState() != StateClosed {
		t.Error("success should have reset the consecutive failure count")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond)

	cb.Failure()
	if cb.GetState() != StateOpen {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("breaker should allow one probe after the reset timeout")
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.GetState())
	}
	if cb.Allow() {
		t.Error("probe budget of 1 should reject a second call")
	}

	cb.Success()
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.GetState())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond)

	cb.Failure()
	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("probe should be allowed")
	}
	cb.Failure()

	if cb.GetState() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", cb.GetState())
	}
}

func TestBreakerReset(t *testing.T) {
	cb := newTestBreaker(1, time.Hour)

	cb.Failure()
	if cb.GetState() != StateOpen {
		t.Fatal("breaker should be open")
	}

	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Error("reset should close the breaker")
	}
	if !cb.Allow() {
		t.Error("reset breaker must allow calls")
	}
}

func TestBreakerMetrics(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)
	cb.Failure()

	m := cb.GetMetrics()

	if m["state"] != "closed" {
		t.Errorf("state = %v", m["state"])
	}
	if m["failure_count"] != 1 {
		t.Errorf("failure_count = %v", m["failure_count"])
	}
	if m["failure_threshold"] != 3 {
		t.Errorf("failure_threshold = %v", m["failure_threshold"])
	}
}
