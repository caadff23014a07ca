package api

import (
	"net/http"
)

// getSyncBreakerHandler reports the state of the circuit breaker in
// front of the Shopify admin API.
func (s *Server) getSyncBreakerHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.breaker.GetMetrics(),
	})
}

// resetSyncBreakerHandler forces the breaker closed, re-enabling sync
// attempts immediately.
func (s *Server) resetSyncBreakerHandler(w http.ResponseWriter, r *http.Request) {
	s.breaker.Reset()

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]string{
			"message": "Circuit breaker reset successfully",
		},
	})
}
