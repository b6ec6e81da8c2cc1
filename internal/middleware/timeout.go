package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds how long a single request may run
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context and cuts the response off after the
// given duration. Note ingestion calls the extraction provider inline, so a
// hung upstream must not hold the connection open.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		inner := http.TimeoutHandler(next, timeout, "Request Timeout")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Deadline on the context too, so downstream calls stop
			// and not just the response writer.
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			inner.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
