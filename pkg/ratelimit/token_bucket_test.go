package ratelimit

import (
	"testing"
)

func TestTokenBucketStartsFull(t *testing.T) {
	tb := NewTokenBucket(3, 0.001)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if tb.Allow() {
		t.Error("bucket should be empty after maxTokens requests")
	}
}

func TestTokenBucketAllowN(t *testing.T) {
	tb := NewTokenBucket(5, 0.001)

	if !tb.AllowN(4) {
		t.Fatal("4 of 5 tokens should be available")
	}
	if tb.AllowN(2) {
		t.Error("only 1 token should remain")
	}
	if !tb.AllowN(1) {
		t.Error("the last token should still be spendable")
	}
}

func TestTokenBucketAvailable(t *testing.T) {
	tb := NewTokenBucket(10, 0.001)

	tb.AllowN(4)

	got := tb.Available()
	if got < 5.9 || got > 6.1 {
		t.Errorf("Available = %v, want ~6", got)
	}
}

func TestTokenBucketCapsAtMax(t *testing.T) {
	tb := NewTokenBucket(2, 1000)

	// Even with a huge refill rate the bucket never exceeds its cap.
	tb.Allow()
	if got := tb.Available(); got > 2 {
		t.Errorf("Available = %v, exceeds cap", got)
	}
}

func TestIPRateLimiterPerIP(t *testing.T) {
	l := NewIPRateLimiter(1, 0.001)
	defer l.Stop()

	if !l.Allow("203.0.113.1") {
		t.Fatal("first request from an IP should pass")
	}
	if l.Allow("203.0.113.1") {
		t.Error("second request from the same IP should be limited")
	}
	if !l.Allow("203.0.113.2") {
		t.Error("a different IP gets its own bucket")
	}
}
