package middleware

import (
	"net/http"
	"strings"
)

// ContentType rejects bodied requests that do not declare JSON. The only
// bodied endpoints are itinerary generation and recalculation, and both
// decode JSON exclusively, so anything else is refused before routing.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := strings.ToLower(r.Header.Get("Content-Type"))
			if ct == "" {
				writeJSONError(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required")
				return
			}
			// Accept a charset suffix, require the JSON media type.
			if !strings.HasPrefix(ct, "application/json") {
				writeJSONError(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
