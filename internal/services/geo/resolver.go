package geo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/models"
)

// DefaultCenter is the map center of last resort: the geographic center
// of the contiguous United States.
var DefaultCenter = models.GeoPoint{Lat: 39.8283, Lng: -98.5795}

// resolveConcurrency bounds parallel per-item lookups within one pass.
const resolveConcurrency = 4

// Resolver geocodes itinerary locations and validates results against
// known city bounding boxes.
type Resolver struct {
	geocoder Geocoder
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(geocoder Geocoder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve geocodes a location string. The query is disambiguated with
// city/state unless the city name is already present in the text. A
// result outside the city's configured bounding box triggers exactly one
// retry with a more explicit query; if the retry also misses, the
// original out-of-bounds point is returned rather than discarded. All
// lookup failures degrade to nil.
func (r *Resolver) Resolve(ctx context.Context, location, city, state string) *models.GeoPoint {
	query := disambiguate(location, city, state)

	point, err := r.geocoder.Lookup(ctx, query)
	if err != nil {
		r.logger.Warn("geocode_lookup_failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if point == nil {
		return nil
	}

	box, known := BoundsFor(city)
	if !known || box.Contains(*point) {
		return point
	}

	// One retry with an even more explicit query.
	retryQuery := fmt.Sprintf("%s, %s, USA", location, city)
	r.logger.Info("geocode_out_of_bounds_retry",
		zap.String("city", city),
		zap.String("query", retryQuery),
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng),
	)
	retry, err := r.geocoder.Lookup(ctx, retryQuery)
	if err != nil || retry == nil {
		return point
	}
	if box.Contains(*retry) {
		return retry
	}
	return point
}

// ResolveItems geocodes each itinerary item's location. Lookups are
// independent and run with bounded parallelism; the returned slice is
// positionally aligned with items, nil entries marking unresolved
// locations.
func (r *Resolver) ResolveItems(ctx context.Context, items []models.ItineraryItem, city, state string) []*models.GeoPoint {
	points := make([]*models.GeoPoint, len(items))

	sem := make(chan struct{}, resolveConcurrency)
	var wg sync.WaitGroup
	for i, item := range items {
		if item.Location == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, location string) {
			defer wg.Done()
			defer func() { <-sem }()
			points[i] = r.Resolve(ctx, location, city, state)
		}(i, item.Location)
	}
	wg.Wait()

	return points
}

// MapCenter computes the arithmetic mean of all resolved points. With
// zero resolved points it falls back to geocoding the city alone, and
// finally to a fixed default coordinate: the map-display path never
// fails outright.
func (r *Resolver) MapCenter(ctx context.Context, points []*models.GeoPoint, city, state string) models.GeoPoint {
	var sum models.GeoPoint
	var count int
	for _, p := range points {
		if p == nil {
			continue
		}
		sum.Lat += p.Lat
		sum.Lng += p.Lng
		count++
	}
	if count > 0 {
		return models.GeoPoint{Lat: sum.Lat / float64(count), Lng: sum.Lng / float64(count)}
	}

	if cityPoint, err := r.geocoder.Lookup(ctx, fmt.Sprintf("%s, %s", city, state)); err == nil && cityPoint != nil {
		return *cityPoint
	}
	if box, ok := BoundsFor(city); ok {
		return box.Center()
	}
	return DefaultCenter
}

// disambiguate appends city/state context unless the location text
// already names the city.
func disambiguate(location, city, state string) string {
	if strings.Contains(strings.ToLower(location), strings.ToLower(city)) {
		return location
	}
	return fmt.Sprintf("%s, %s, %s", location, city, state)
}
