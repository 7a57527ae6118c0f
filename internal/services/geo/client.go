package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/metropolisapp/metropolis/internal/models"
)

const (
	defaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTimeout    = 10 * time.Second
)

// Geocoder is the external geocoding collaborator. A nil point with a nil
// error means "not found", which is a normal outcome.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*models.GeoPoint, error)
}

// GoogleClient geocodes via the Google Geocoding API.
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

// NewGoogleClient creates a geocoding client rate limited to 10 req/s.
func NewGoogleClient(apiKey string, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		apiKey:     apiKey,
		baseURL:    defaultGeocodeURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(10), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup implements Geocoder.
func (c *GoogleClient) Lookup(ctx context.Context, query string) (*models.GeoPoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode rate limit: %w", err)
	}

	params := url.Values{
		"address": {query},
		"key":     {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocode read body: %w", err)
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("geocode parse response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return nil, nil
	}

	loc := decoded.Results[0].Geometry.Location
	return &models.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// NoGeocoder is the degraded Geocoder used when no API key is
// configured. Every lookup is "not found", so map centers fall back to
// city bounding boxes and the fixed default.
type NoGeocoder struct{}

// Lookup implements Geocoder.
func (NoGeocoder) Lookup(context.Context, string) (*models.GeoPoint, error) {
	return nil, nil
}
