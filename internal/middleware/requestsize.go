package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 64KB. The largest
// legitimate payload is a recalculation carrying a full exclusion list,
// which stays well under this.
const DefaultMaxRequestSize int64 = 64 << 10

// MaxRequestSize rejects oversized bodies, by Content-Length when the
// client declares one and by MaxBytesReader when it does not.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSONError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds the size limit")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
