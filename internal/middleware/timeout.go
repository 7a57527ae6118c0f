package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout is generous for a JSON API because itinerary
// generation waits on a full model round trip.
const DefaultRequestTimeout = 90 * time.Second

const timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request exceeded the processing time limit"}`

// Timeout aborts requests that outlive the deadline, cancelling the
// request context so the generation pipeline stops its upstream calls.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		timed := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			timed.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
