package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/metropolisapp/metropolis/internal/models"
)

const (
	defaultDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	defaultTimeout       = 10 * time.Second
)

// ErrInsufficientRoutePoints is returned when fewer than two resolvable
// locations are available for a route request.
var ErrInsufficientRoutePoints = errors.New("insufficient route points")

// Router is the external directions collaborator. A nil slice with a nil
// error means "route unavailable".
type Router interface {
	Route(ctx context.Context, stops []models.GeoPoint, mode models.TravelMode) ([]models.GeoPoint, error)
}

// GoogleClient fetches routes via the Google Directions API.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// GoogleOption configures the client.
type GoogleOption func(*GoogleClient)

// WithGoogleBaseURL overrides the API base URL (used by tests).
func WithGoogleBaseURL(u string) GoogleOption {
	return func(c *GoogleClient) { c.baseURL = u }
}

// NewGoogleClient creates a directions client.
func NewGoogleClient(apiKey string, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		apiKey:     apiKey,
		baseURL:    defaultDirectionsURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(10), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// Route requests a multi-stop route: first stop is the origin, last is
// the destination, the rest become waypoints. The decoded overview
// polyline is returned; "unavailable" maps to a nil slice.
func (c *GoogleClient) Route(ctx context.Context, stops []models.GeoPoint, mode models.TravelMode) ([]models.GeoPoint, error) {
	if len(stops) < 2 {
		return nil, ErrInsufficientRoutePoints
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("directions rate limit: %w", err)
	}

	params := url.Values{
		"origin":      {formatPoint(stops[0])},
		"destination": {formatPoint(stops[len(stops)-1])},
		"mode":        {string(mode)},
		"key":         {c.apiKey},
	}
	if len(stops) > 2 {
		waypoints := make([]string, 0, len(stops)-2)
		for _, p := range stops[1 : len(stops)-1] {
			waypoints = append(waypoints, formatPoint(p))
		}
		params.Set("waypoints", strings.Join(waypoints, "|"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("directions build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("directions read body: %w", err)
	}

	var decoded directionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("directions parse response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Routes) == 0 {
		return nil, nil
	}
	return decodePolyline(decoded.Routes[0].OverviewPolyline.Points), nil
}

func formatPoint(p models.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// NoRouter is the degraded Router used when no API key is configured.
// Routes are always unavailable; the insufficient-points error is still
// reported so callers distinguish "cannot route" from "will not route".
type NoRouter struct{}

// Route implements Router.
func (NoRouter) Route(_ context.Context, stops []models.GeoPoint, _ models.TravelMode) ([]models.GeoPoint, error) {
	if len(stops) < 2 {
		return nil, ErrInsufficientRoutePoints
	}
	return nil, nil
}

// ParseTravelMode validates a mode string, defaulting empty input to
// walking.
func ParseTravelMode(s string) (models.TravelMode, error) {
	if s == "" {
		return models.TravelModeWalking, nil
	}
	mode := models.TravelMode(strings.ToLower(s))
	switch mode {
	case models.TravelModeWalking, models.TravelModeDriving, models.TravelModeBicycling, models.TravelModeTransit:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid travel mode: %s (must be 'walking', 'driving', 'bicycling', or 'transit')", s)
	}
}
