package middleware

import (
	"net/http"
	"time"

	"github.com/mcoot/tycoon-backend/internal/metrics"
)

// Metrics records request latency per route template
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, RouteTemplate(r), wrapped.Status(), time.Since(start))
		})
	}
}
