package events

import (
	"fmt"
	"testing"

	"github.com/metropolisapp/metropolis/internal/budget"
	"github.com/metropolisapp/metropolis/internal/models"
)

func paidEvent(title, price string) models.CandidateEvent {
	return models.CandidateEvent{
		Title:      title,
		TicketInfo: []models.TicketInfo{{Price: price}},
	}
}

func freeEvent(title string) models.CandidateEvent {
	return models.CandidateEvent{
		Title:      title,
		TicketInfo: []models.TicketInfo{{Price: "Free"}},
	}
}

func TestNormalizeZeroRawEventsSubstitutesFallback(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	result := n.Normalize(nil, models.BudgetTierLow, nil, "Portland", "2025-06-01")

	if !result.Curated {
		t.Error("expected curated result for zero raw events")
	}
	if len(result.Events) == 0 {
		t.Fatal("normalizer must never return an empty candidate set")
	}
	for _, e := range result.Events {
		if e.Address() == "" {
			t.Errorf("fallback event %q missing city-parameterized address", e.Title)
		}
	}
}

func TestNormalizeExclusionsEmptyingSetTriggerFallback(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	raw := []models.CandidateEvent{paidEvent("Live Jazz Night", "$15")}
	result := n.Normalize(raw, models.BudgetTierLow, []string{"Live Jazz Night"}, "Austin", "2025-06-01")

	if !result.Curated {
		t.Error("expected fallback substitution after exclusions emptied the set")
	}
	if len(result.Events) == 0 {
		t.Fatal("expected non-empty substituted set")
	}
	// The exclusion list applies to the substituted set too.
	for _, e := range result.Events {
		if e.Title == "Live Jazz Night" {
			t.Error("excluded title survived fallback substitution")
		}
	}
}

func TestNormalizeFreeTierUsesFreeMembership(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	raw := []models.CandidateEvent{
		{
			Title:       "Outdoor Concert",
			Description: "free music in the park",
			TicketInfo:  []models.TicketInfo{{Price: "$10 parking"}},
		},
		{
			Title:       "Street Fair",
			Description: "free admission",
		},
		paidEvent("Wine Tasting", "$60"),
	}
	result := n.Normalize(raw, models.BudgetTierFree, nil, "Austin", "2025-06-01")

	if result.Curated {
		t.Error("live free events present, fallback should not fire")
	}
	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want 2 (free-membership wins over stray cost strings)", len(result.Events))
	}
	for _, e := range result.Events {
		if e.Title == "Wine Tasting" {
			t.Error("paid event passed the free-membership filter")
		}
	}
}

func TestNormalizeRelaxationLadder(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)

	// $1-$50 tier: per-item ceiling 25. Nothing under 25, one under 50.
	raw := []models.CandidateEvent{
		paidEvent("Dinner Cruise", "$45"),
		paidEvent("Helicopter Tour", "$300"),
	}
	result := n.Normalize(raw, models.BudgetTierLow, nil, "Austin", "2025-06-01")

	if result.Relaxation != budget.RelaxationDoubled {
		t.Fatalf("relaxation = %v, want doubled ceiling", result.Relaxation)
	}
	if len(result.Events) != 1 || result.Events[0].Title != "Dinner Cruise" {
		t.Fatalf("got %v, want only the 2x-ceiling-filtered event", result.Events)
	}
}

func TestNormalizeRelaxationExhaustedAcceptsAll(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	raw := []models.CandidateEvent{
		paidEvent("Helicopter Tour", "$300"),
		paidEvent("Private Chef", "$400"),
	}
	result := n.Normalize(raw, models.BudgetTierLow, nil, "Austin", "2025-06-01")

	if result.Relaxation != budget.RelaxationUnfiltered {
		t.Fatalf("relaxation = %v, want unfiltered", result.Relaxation)
	}
	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want all candidates", len(result.Events))
	}
	if result.Curated {
		t.Error("unfiltered acceptance is not fallback substitution")
	}
}

func TestNormalizeStrictFilterHolds(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	raw := []models.CandidateEvent{
		paidEvent("Museum", "$12"),
		paidEvent("Helicopter Tour", "$300"),
	}
	result := n.Normalize(raw, models.BudgetTierLow, nil, "Austin", "2025-06-01")

	if result.Relaxation != budget.RelaxationNone {
		t.Fatalf("relaxation = %v, want none", result.Relaxation)
	}
	if len(result.Events) != 1 || result.Events[0].Title != "Museum" {
		t.Fatalf("got %v, want only the strictly-filtered event", result.Events)
	}
}

func TestNormalizeDedupeAndCap(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	var raw []models.CandidateEvent
	for i := 0; i < 30; i++ {
		raw = append(raw, freeEvent(fmt.Sprintf("Event %d", i)))
	}
	raw = append(raw, freeEvent("Event 0")) // duplicate title

	result := n.Normalize(raw, models.BudgetTierLow, nil, "Austin", "2025-06-01")
	if len(result.Events) != budget.MaxCandidates {
		t.Fatalf("got %d events, want cap of %d", len(result.Events), budget.MaxCandidates)
	}
	seen := map[string]int{}
	for _, e := range result.Events {
		seen[e.Title]++
	}
	if seen["Event 0"] != 1 {
		t.Errorf("duplicate title kept %d times, want 1", seen["Event 0"])
	}
}

func TestFallbackEventsDeterministic(t *testing.T) {
	t.Parallel()

	a := FallbackEvents("Austin", "2025-06-01")
	b := FallbackEvents("Austin", "2025-06-01")
	if len(a) != len(b) || len(a) == 0 {
		t.Fatalf("fallback sets differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Address() != b[i].Address() {
			t.Errorf("fallback event %d not deterministic", i)
		}
	}

	var sawFree, sawPaid bool
	for _, e := range a {
		if budget.IsFree(e) {
			sawFree = true
		} else if budget.Cost(e) > 0 {
			sawPaid = true
		}
	}
	if !sawFree || !sawPaid {
		t.Error("fallback set must span free daytime and paid evening events")
	}
}
