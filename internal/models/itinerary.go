package models

import (
	"time"

	"github.com/google/uuid"
)

// BudgetTier is a named budget bracket. The associated cost ceilings live
// in the budget package; the label is what travels through the API.
type BudgetTier string

const (
	BudgetTierFree     BudgetTier = "$0"
	BudgetTierLow      BudgetTier = "$1-$50"
	BudgetTierModerate BudgetTier = "$51-$100"
	BudgetTierHigh     BudgetTier = "$101-$250"
	BudgetTierPremium  BudgetTier = "$251-$500"
	BudgetTierLuxury   BudgetTier = "$500+"
)

// ItineraryItem is one scheduled stop in a plan. StartTime and EndTime are
// "HH:MM" 24-hour strings. EndTime is expected to be after StartTime but
// consumers must tolerate violations rather than crash.
type ItineraryItem struct {
	Title         string  `json:"title"`
	Date          string  `json:"date,omitempty"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	TicketInfo    string  `json:"ticket_info"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// SearchParams are the parameters that produced an itinerary. They are
// stored beside each version so a recalculation can derive a new version
// from the original's parameters plus deltas.
type SearchParams struct {
	City        string     `json:"city"`
	State       string     `json:"state"`
	Dates       []string   `json:"dates"`
	Budget      BudgetTier `json:"budget"`
	Preferences string     `json:"preferences,omitempty"`
	Exclusions  []string   `json:"excluded_events,omitempty"`
}

// Itinerary is an immutable versioned snapshot of a generated plan.
// Recalculation creates a new Itinerary with a fresh ID; stored entries
// are never mutated in place.
type Itinerary struct {
	ID        uuid.UUID       `json:"itinerary_id"`
	Items     []ItineraryItem `json:"events"`
	City      string          `json:"city"`
	State     string          `json:"state"`
	Dates     []string        `json:"dates"`
	Budget    BudgetTier      `json:"budget"`
	TotalCost float64         `json:"total_cost"`
	Summary   string          `json:"summary"`
	Curated   bool            `json:"curated"`
	CreatedAt time.Time       `json:"created_at"`
}

// FirstDate returns the first requested trip date, used as the default for
// items the generator emitted without one.
func FirstDate(dates []string) string {
	if len(dates) == 0 {
		return time.Now().Format("2006-01-02")
	}
	return dates[0]
}

// SumCost totals item costs. The total is advisory: the budget ceiling is
// enforced upstream in the generation request, not re-verified here.
func SumCost(items []ItineraryItem) float64 {
	var total float64
	for _, it := range items {
		total += it.EstimatedCost
	}
	return total
}
