package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/codform/order-api/pkg/logger"
	"github.com/codform/order-api/pkg/ratelimit"
)

// RateLimiter applies per-IP token bucket limiting to public routes.
type RateLimiter struct {
	ipLimiter         *ratelimit.IPRateLimiter
	logger            logger.Logger
	trustForwardedFor bool
}

// RateLimiterConfig configures the rate limiter middleware.
type RateLimiterConfig struct {
	IPMaxTokens       float64
	IPRefillRate      float64
	TrustForwardedFor bool
}

// NewRateLimiter creates the middleware.
func NewRateLimiter(cfg *RateLimiterConfig, logger logger.Logger) *RateLimiter {
	return &RateLimiter{
		ipLimiter:         ratelimit.NewIPRateLimiter(cfg.IPMaxTokens, cfg.IPRefillRate),
		logger:            logger,
		trustForwardedFor: cfg.TrustForwardedFor,
	}
}

// Middleware returns the mux-compatible middleware function.
func (m *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r, m.trustForwardedFor)

		if !m.ipLimiter.Allow(ip) {
			m.logger.Warn("IP rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ip)

			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop shuts down the underlying limiter.
func (m *RateLimiter) Stop() {
	m.ipLimiter.Stop()
}

// ClientIP extracts the client address, optionally honouring the first
// entry of X-Forwarded-For.
func ClientIP(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			return strings.TrimSpace(parts[0])
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	// RemoteAddr without a port, e.g. a bare IPv6 address in tests.
	return r.RemoteAddr
}
