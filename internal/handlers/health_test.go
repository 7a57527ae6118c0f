package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckBasicMode(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker(UpstreamStatus{EventsSource: true, Geocoding: true})
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Checks != nil {
		t.Error("basic mode must not include checks")
	}
}

func TestHealthCheckExtendedMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		upstreams UpstreamStatus
		events    string
		geocoding string
	}{
		{
			name:      "all upstreams configured",
			upstreams: UpstreamStatus{EventsSource: true, Geocoding: true},
			events:    "configured",
			geocoding: "configured",
		},
		{
			name:      "missing keys reported as degraded",
			upstreams: UpstreamStatus{},
			events:    "not configured (degraded)",
			geocoding: "not configured (degraded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker(tt.upstreams)
			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

			// Missing upstreams degrade features; the server itself stays healthy.
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if resp.Checks["events_source"] != tt.events {
				t.Errorf("events_source = %q, want %q", resp.Checks["events_source"], tt.events)
			}
			if resp.Checks["geocoding"] != tt.geocoding {
				t.Errorf("geocoding = %q, want %q", resp.Checks["geocoding"], tt.geocoding)
			}
		})
	}
}
