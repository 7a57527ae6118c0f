package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/export"
	"github.com/metropolisapp/metropolis/internal/models"
	"github.com/metropolisapp/metropolis/internal/services/directions"
	"github.com/metropolisapp/metropolis/internal/services/itinerary"
	"github.com/metropolisapp/metropolis/internal/services/planner"
	"github.com/metropolisapp/metropolis/internal/store"
	"github.com/metropolisapp/metropolis/internal/validation"
)

const (
	// MaxPreferencesLength is the maximum length for preference text
	MaxPreferencesLength = 2000
	// MaxTripDates is the maximum number of dates per trip
	MaxTripDates = 14
	// MaxExcludedEvents is the maximum number of exclusions per recalculation
	MaxExcludedEvents = 50
)

// ItineraryService is the planning pipeline behind the handler.
type ItineraryService interface {
	Generate(ctx context.Context, params models.SearchParams) (models.Itinerary, error)
	Recalculate(ctx context.Context, id uuid.UUID, extraPreferences string, exclusions []string) (models.Itinerary, error)
	Get(id uuid.UUID) (store.Entry, error)
}

// GeoResolver resolves itinerary locations to map coordinates.
type GeoResolver interface {
	ResolveItems(ctx context.Context, items []models.ItineraryItem, city, state string) []*models.GeoPoint
	MapCenter(ctx context.Context, points []*models.GeoPoint, city, state string) models.GeoPoint
}

// ItineraryHandler handles itinerary-related requests
type ItineraryHandler struct {
	service  ItineraryService
	resolver GeoResolver
	router   directions.Router
	logger   *zap.Logger
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(service ItineraryService, resolver GeoResolver, router directions.Router, logger *zap.Logger) *ItineraryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItineraryHandler{service: service, resolver: resolver, router: router, logger: logger}
}

// RegisterRoutes registers itinerary routes on the given router
// The router should already have the /itineraries prefix
func (h *ItineraryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Generate).Methods("POST")
	r.HandleFunc("/{id}", h.Get).Methods("GET")
	r.HandleFunc("/{id}/recalculate", h.Recalculate).Methods("POST")
	r.HandleFunc("/{id}/export/ics", h.ExportICS).Methods("GET")
	r.HandleFunc("/{id}/export/pdf", h.ExportPDF).Methods("GET")
	r.HandleFunc("/{id}/map", h.MapData).Methods("GET")
	r.HandleFunc("/{id}/route", h.Route).Methods("GET")
}

// GenerateRequest represents an itinerary generation request. Count and
// length ceilings are enforced in code against the exported limits.
type GenerateRequest struct {
	City        string   `json:"city" validate:"required,min=1,max=100"`
	State       string   `json:"state" validate:"required,min=2,max=100"`
	Dates       []string `json:"dates" validate:"required,min=1,dive,trip_date"`
	Budget      string   `json:"budget" validate:"required,budget_tier"`
	Preferences string   `json:"preferences"`
}

// RecalculateRequest represents a recalculation request
type RecalculateRequest struct {
	ExtraPreferences string   `json:"extra_preferences"`
	ExcludedEvents   []string `json:"excluded_events" validate:"dive,max=300"`
}

// RouteQuery captures the query parameters of a route request.
type RouteQuery struct {
	Mode string `validate:"omitempty,travel_mode"`
}

// MapResponse represents geocoded map data for an itinerary
type MapResponse struct {
	Center models.GeoPoint `json:"center"`
	Points []*MapPoint     `json:"points"`
}

// MapPoint pairs an itinerary item with its resolved coordinate.
type MapPoint struct {
	Title    string           `json:"title"`
	Location string           `json:"location"`
	Point    *models.GeoPoint `json:"point,omitempty"`
}

// RouteResponse represents a decoded route polyline
type RouteResponse struct {
	Mode   models.TravelMode `json:"mode"`
	Points []models.GeoPoint `json:"points"`
}

// Generate handles POST /itineraries
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON in request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if len(req.Dates) > MaxTripDates {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("A trip may span at most %d dates", MaxTripDates))
		return
	}
	if len(req.Preferences) > MaxPreferencesLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Preferences may be at most %d characters", MaxPreferencesLength))
		return
	}

	params := models.SearchParams{
		City:        validation.SanitizeText(req.City),
		State:       validation.SanitizeText(req.State),
		Dates:       req.Dates,
		Budget:      models.BudgetTier(req.Budget),
		Preferences: validation.SanitizeText(req.Preferences),
	}

	it, err := h.service.Generate(r.Context(), params)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// Get handles GET /itineraries/{id}
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, entry.Itinerary)
}

// Recalculate handles POST /itineraries/{id}/recalculate
func (h *ItineraryHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON in request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if len(req.ExcludedEvents) > MaxExcludedEvents {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("At most %d events may be excluded per recalculation", MaxExcludedEvents))
		return
	}
	if len(req.ExtraPreferences) > MaxPreferencesLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Preferences may be at most %d characters", MaxPreferencesLength))
		return
	}

	exclusions := make([]string, 0, len(req.ExcludedEvents))
	for _, e := range req.ExcludedEvents {
		if s := validation.SanitizeText(e); s != "" {
			exclusions = append(exclusions, s)
		}
	}

	it, err := h.service.Recalculate(r.Context(), id, validation.SanitizeText(req.ExtraPreferences), exclusions)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// ExportICS handles GET /itineraries/{id}/export/ics
func (h *ItineraryHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	content := export.ICS(entry.Itinerary)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=metropolis-%s.ics", entry.Itinerary.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		h.logger.Warn("ics_write_failed", zap.Error(err))
	}
}

// ExportPDF handles GET /itineraries/{id}/export/pdf
func (h *ItineraryHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	content, err := export.PDF(entry.Itinerary)
	if err != nil {
		h.logger.Error("pdf_render_failed",
			zap.String("itinerary_id", entry.Itinerary.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to render PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=metropolis-%s.pdf", entry.Itinerary.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.logger.Warn("pdf_write_failed", zap.Error(err))
	}
}

// MapData handles GET /itineraries/{id}/map
func (h *ItineraryHandler) MapData(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	it := entry.Itinerary
	resolved := h.resolver.ResolveItems(r.Context(), it.Items, it.City, it.State)
	points := make([]*MapPoint, len(it.Items))
	for i, item := range it.Items {
		points[i] = &MapPoint{Title: item.Title, Location: item.Location, Point: resolved[i]}
	}

	respondJSON(w, http.StatusOK, MapResponse{
		Center: h.resolver.MapCenter(r.Context(), resolved, it.City, it.State),
		Points: points,
	})
}

// Route handles GET /itineraries/{id}/route
func (h *ItineraryHandler) Route(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	query := RouteQuery{Mode: r.URL.Query().Get("mode")}
	if err := validation.Validate.Struct(query); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Travel mode must be 'walking', 'driving', 'bicycling', or 'transit'")
		return
	}
	mode, err := directions.ParseTravelMode(query.Mode)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	it := entry.Itinerary
	resolved := h.resolver.ResolveItems(r.Context(), it.Items, it.City, it.State)
	stops := make([]models.GeoPoint, 0, len(resolved))
	for _, p := range resolved {
		if p != nil {
			stops = append(stops, *p)
		}
	}

	route, err := h.router.Route(r.Context(), stops, mode)
	if err != nil {
		if errors.Is(err, directions.ErrInsufficientRoutePoints) {
			respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Not enough resolvable locations to build a route")
			return
		}
		h.logger.Error("route_request_failed",
			zap.String("itinerary_id", it.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Directions service unavailable")
		return
	}

	respondJSON(w, http.StatusOK, RouteResponse{Mode: mode, Points: route})
}

// lookup parses the path id and fetches the stored entry, writing the
// error response itself on failure.
func (h *ItineraryHandler) lookup(w http.ResponseWriter, r *http.Request) (store.Entry, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return store.Entry{}, false
	}
	entry, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrItineraryNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Itinerary not found")
			return store.Entry{}, false
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve itinerary")
		return store.Entry{}, false
	}
	return entry, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid itinerary ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondPipelineError maps pipeline errors to HTTP statuses.
func (h *ItineraryHandler) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrItineraryNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Itinerary not found")
	case errors.Is(err, planner.ErrGenerationMalformed):
		h.logger.Error("plan_generation_malformed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Itinerary generation produced an unusable plan")
	case errors.Is(err, itinerary.ErrNoCandidateEvents):
		respondJSONError(w, http.StatusNotFound, "Not Found", "No events available for the requested trip")
	default:
		h.logger.Error("itinerary_pipeline_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate itinerary")
	}
}
