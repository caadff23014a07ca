package ratelimit

import (
	"sync"
	"time"
)

// IPRateLimiter keeps one token bucket per client IP. Buckets that have
// been idle longer than the cleanup interval are dropped to bound memory.
type IPRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*ipBucket
	maxTokens  float64
	refillRate float64
	cleanup    *time.Ticker
	stop       chan struct{}
}

type ipBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewIPRateLimiter creates a limiter handing out maxTokens-sized buckets
// refilling at refillRate tokens per second.
func NewIPRateLimiter(maxTokens, refillRate float64) *IPRateLimiter {
	l := &IPRateLimiter{
		buckets:    make(map[string]*ipBucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		cleanup:    time.NewTicker(10 * time.Minute),
		stop:       make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.buckets[ip]
	if !ok {
		entry = &ipBucket{bucket: NewTokenBucket(l.maxTokens, l.refillRate)}
		l.buckets[ip] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	return entry.bucket.Allow()
}

func (l *IPRateLimiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanup.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			l.mu.Lock()
			for ip, entry := range l.buckets {
				if entry.lastSeen.Before(cutoff) {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			l.cleanup.Stop()
			return
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (l *IPRateLimiter) Stop() {
	close(l.stop)
}
