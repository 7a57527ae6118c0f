package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/metropolisapp/metropolis/internal/models"
)

// ErrItineraryNotFound is returned when an unknown identifier is passed to
// Get. Recalculation, export, geocoding, and routing all surface it.
var ErrItineraryNotFound = errors.New("itinerary not found")

// Entry pairs a stored itinerary with the search parameters that produced
// it, so a recalculation can derive a new version from them.
type Entry struct {
	Itinerary models.Itinerary
	Params    models.SearchParams
}

// Registry is the process-scoped itinerary store. Entries are written
// exactly once and read many times; recalculation creates new entries and
// never mutates old ones. The registry grows unbounded for the life of
// the process and is not durable across restarts.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]Entry)}
}

// Create assigns a fresh identifier to the itinerary, stores it with its
// originating search parameters, and returns the identifier.
func (r *Registry) Create(it models.Itinerary, params models.SearchParams) uuid.UUID {
	id := uuid.New()
	it.ID = id

	r.mu.Lock()
	r.entries[id] = Entry{Itinerary: it, Params: params}
	r.mu.Unlock()

	return id
}

// Get returns the entry for id, or ErrItineraryNotFound.
func (r *Registry) Get(id uuid.UUID) (Entry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return Entry{}, ErrItineraryNotFound
	}
	return entry, nil
}

// Len reports the number of stored itineraries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
