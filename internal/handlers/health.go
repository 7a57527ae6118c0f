package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// UpstreamStatus reports which optional upstream integrations are
// configured. Missing ones degrade features rather than fail the server.
type UpstreamStatus struct {
	EventsSource bool
	Geocoding    bool
}

// HealthChecker handles health check requests
type HealthChecker struct {
	upstreams UpstreamStatus
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(upstreams UpstreamStatus) *HealthChecker {
	return &HealthChecker{upstreams: upstreams}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)
		checks["events_source"] = configuredLabel(h.upstreams.EventsSource)
		checks["geocoding"] = configuredLabel(h.upstreams.Geocoding)
		response.Checks = checks
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func configuredLabel(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured (degraded)"
}
