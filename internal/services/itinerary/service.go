package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/events"
	"github.com/metropolisapp/metropolis/internal/models"
	"github.com/metropolisapp/metropolis/internal/services/serpapi"
	"github.com/metropolisapp/metropolis/internal/store"
)

// ErrNoCandidateEvents indicates the pipeline had no candidates to plan
// from. With fallback substitution in place this is unreachable in
// practice; it exists so the impossible case fails loudly instead of
// producing an empty itinerary.
var ErrNoCandidateEvents = errors.New("no candidate events")

// Builder is the plan-construction stage of the pipeline.
type Builder interface {
	BuildPlan(ctx context.Context, evs []models.CandidateEvent, dates []string, city string, tier models.BudgetTier, preferences string) ([]models.ItineraryItem, error)
}

// Service orchestrates the planning pipeline: events source → normalizer
// → plan builder → store. Recalculation re-runs the same pipeline from a
// stored version's parameters plus deltas.
type Service struct {
	source     serpapi.Source
	normalizer *events.Normalizer
	builder    Builder
	registry   *store.Registry
	logger     *zap.Logger
}

// NewService wires the pipeline stages together.
func NewService(source serpapi.Source, normalizer *events.Normalizer, builder Builder, registry *store.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:     source,
		normalizer: normalizer,
		builder:    builder,
		registry:   registry,
		logger:     logger,
	}
}

// Generate runs the full pipeline for the given search parameters and
// stores the result as a new itinerary version.
func (s *Service) Generate(ctx context.Context, params models.SearchParams) (models.Itinerary, error) {
	raw, err := s.source.Search(ctx, params.City, params.State, params.Dates, params.Preferences)
	if err != nil {
		// Transport failure from the events source is treated
		// identically to zero results; fallback substitution covers it.
		s.logger.Warn("events_source_failed",
			zap.String("city", params.City),
			zap.Error(err),
		)
		raw = nil
	}

	result := s.normalizer.Normalize(raw, params.Budget, params.Exclusions, params.City, models.FirstDate(params.Dates))
	if len(result.Events) == 0 {
		return models.Itinerary{}, ErrNoCandidateEvents
	}

	items, err := s.builder.BuildPlan(ctx, result.Events, params.Dates, params.City, params.Budget, params.Preferences)
	if err != nil {
		return models.Itinerary{}, err
	}

	it := models.Itinerary{
		Items:     items,
		City:      params.City,
		State:     params.State,
		Dates:     params.Dates,
		Budget:    params.Budget,
		TotalCost: models.SumCost(items),
		Summary:   summarize(params.City, result.Curated),
		Curated:   result.Curated,
		CreatedAt: time.Now().UTC(),
	}
	id := s.registry.Create(it, params)
	it.ID = id

	s.logger.Info("itinerary_created",
		zap.String("itinerary_id", id.String()),
		zap.String("city", params.City),
		zap.String("budget", string(params.Budget)),
		zap.Int("items", len(items)),
		zap.Bool("curated", result.Curated),
		zap.String("relaxation", result.Relaxation.String()),
	)
	return it, nil
}

// Recalculate derives a new itinerary version from a stored one. The
// original entry is never mutated: its parameters are merged with the
// deltas and the full pipeline re-runs under a fresh identifier.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID, extraPreferences string, exclusions []string) (models.Itinerary, error) {
	entry, err := s.registry.Get(id)
	if err != nil {
		return models.Itinerary{}, err
	}

	params := entry.Params
	params.Preferences = mergePreferences(params.Preferences, extraPreferences, exclusions)
	params.Exclusions = append(append([]string(nil), params.Exclusions...), exclusions...)

	return s.Generate(ctx, params)
}

// Get returns a stored itinerary version with its parameters.
func (s *Service) Get(id uuid.UUID) (store.Entry, error) {
	return s.registry.Get(id)
}

// mergePreferences concatenates the original preference text with the
// recalculation's extra preferences and appends an exclusion directive
// phrase for the generation step.
func mergePreferences(original, extra string, exclusions []string) string {
	merged := original
	if extra != "" {
		if merged != "" {
			merged += "; " + extra
		} else {
			merged = extra
		}
	}
	if len(exclusions) > 0 {
		directive := fmt.Sprintf("Do not include these events: %s", strings.Join(exclusions, ", "))
		if merged != "" {
			merged += ". " + directive
		} else {
			merged = directive
		}
	}
	return merged
}

func summarize(city string, curated bool) string {
	if curated {
		return fmt.Sprintf("Curated suggestions for %s", city)
	}
	return fmt.Sprintf("Your %s adventure", city)
}
