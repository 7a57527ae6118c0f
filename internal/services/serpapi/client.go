package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/metropolisapp/metropolis/internal/models"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	defaultTimeout = 20 * time.Second
)

// Source is the external events collaborator. An empty result is normal;
// an error means transport failure, which callers treat identically to
// "no results".
type Source interface {
	Search(ctx context.Context, city, state string, dates []string, preferences string) ([]models.CandidateEvent, error)
}

// Client searches events via the SerpAPI google_events engine.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates an events client. Requests are rate limited to
// stay inside the plan's per-second allowance.
func NewClient(apiKey string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse is the subset of the SerpAPI payload the normalizer
// consumes. Every field is optional upstream.
type searchResponse struct {
	Error         string                  `json:"error,omitempty"`
	EventsResults []models.CandidateEvent `json:"events_results,omitempty"`
}

// Search queries the google_events engine. The query stays simple
// ("Events in City, ST"); budget and preference filtering happen
// downstream where they can be relaxed. An API-level error field is
// reported as zero results, not as a transport failure.
func (c *Client) Search(ctx context.Context, city, state string, _ []string, _ string) ([]models.CandidateEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("events search rate limit: %w", err)
	}

	query := fmt.Sprintf("Events in %s, %s", city, state)
	params := url.Values{
		"api_key": {c.apiKey},
		"engine":  {"google_events"},
		"q":       {query},
		"hl":      {"en"},
		"gl":      {"us"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("events search build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("events search read body: %w", err)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("events search parse response: %w", err)
	}

	if decoded.Error != "" {
		c.logger.Warn("events_source_api_error",
			zap.String("query", query),
			zap.String("api_error", decoded.Error),
		)
		return nil, nil
	}

	c.logger.Info("events_search_completed",
		zap.String("query", query),
		zap.Int("results", len(decoded.EventsResults)),
	)
	return decoded.EventsResults, nil
}

// NoSource is the degraded Source used when no API key is configured.
// It always reports zero results, which routes every trip through the
// curated fallback set.
type NoSource struct{}

// Search implements Source.
func (NoSource) Search(context.Context, string, string, []string, string) ([]models.CandidateEvent, error) {
	return nil, nil
}
