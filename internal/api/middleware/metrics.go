package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/metrics"
)

// Metrics reads r.Pattern after the call for the route label. The mux sets it
// on the request it receives, so only pass-through wrappers may sit between
// Metrics and the mux.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
