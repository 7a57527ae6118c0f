package directions

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metropolisapp/metropolis/internal/models"
)

func TestDecodePolyline(t *testing.T) {
	t.Parallel()

	// Reference example from the polyline algorithm documentation.
	points := decodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	want := []models.GeoPoint{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if math.Abs(points[i].Lat-want[i].Lat) > 1e-5 || math.Abs(points[i].Lng-want[i].Lng) > 1e-5 {
			t.Errorf("point %d = %v, want %v", i, points[i], want[i])
		}
	}
}

func TestDecodePolylineDegenerateInput(t *testing.T) {
	t.Parallel()

	if points := decodePolyline(""); len(points) != 0 {
		t.Errorf("empty input decoded to %v", points)
	}
	// Truncated input must not panic.
	_ = decodePolyline("_p~iF")
}

func TestRouteTooFewStops(t *testing.T) {
	t.Parallel()

	c := NewGoogleClient("key")
	_, err := c.Route(context.Background(), []models.GeoPoint{{Lat: 1, Lng: 2}}, models.TravelModeWalking)
	if !errors.Is(err, ErrInsufficientRoutePoints) {
		t.Fatalf("error = %v, want ErrInsufficientRoutePoints", err)
	}
}

func TestRouteDecodesOverviewPolyline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mode") != "walking" {
			t.Errorf("mode = %q", q.Get("mode"))
		}
		if q.Get("waypoints") == "" {
			t.Error("expected waypoints for a 3-stop route")
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"routes": [{"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"}}]
		}`))
	}))
	defer srv.Close()

	c := NewGoogleClient("key", WithGoogleBaseURL(srv.URL))
	stops := []models.GeoPoint{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 39.0, Lng: -120.5},
		{Lat: 40.7, Lng: -120.95},
	}
	route, err := c.Route(context.Background(), stops, models.TravelModeWalking)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if len(route) != 2 {
		t.Fatalf("got %d route points, want 2", len(route))
	}
}

func TestRouteUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer srv.Close()

	c := NewGoogleClient("key", WithGoogleBaseURL(srv.URL))
	stops := []models.GeoPoint{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}
	route, err := c.Route(context.Background(), stops, models.TravelModeDriving)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if route != nil {
		t.Fatalf("route = %v, want nil for unavailable", route)
	}
}

func TestParseTravelMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    models.TravelMode
		wantErr bool
	}{
		{in: "", want: models.TravelModeWalking},
		{in: "walking", want: models.TravelModeWalking},
		{in: "DRIVING", want: models.TravelModeDriving},
		{in: "bicycling", want: models.TravelModeBicycling},
		{in: "transit", want: models.TravelModeTransit},
		{in: "teleport", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTravelMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTravelMode(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTravelMode(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}
