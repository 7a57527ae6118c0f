package itinerary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/metropolisapp/metropolis/internal/events"
	"github.com/metropolisapp/metropolis/internal/models"
	"github.com/metropolisapp/metropolis/internal/services/planner"
	"github.com/metropolisapp/metropolis/internal/store"
)

// fakeSource scripts the events collaborator.
type fakeSource struct {
	events []models.CandidateEvent
	err    error
}

func (f *fakeSource) Search(_ context.Context, _, _ string, _ []string, _ string) ([]models.CandidateEvent, error) {
	return f.events, f.err
}

// fakeGenerator scripts the generation collaborator and records prompts.
type fakeGenerator struct {
	response string
	err      error
	lastUser string
}

func (f *fakeGenerator) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newService(source *fakeSource, gen *fakeGenerator) (*Service, *store.Registry) {
	registry := store.NewRegistry()
	svc := NewService(source, events.NewNormalizer(nil), planner.NewBuilder(gen, nil), registry, nil)
	return svc, registry
}

func austinParams(budget models.BudgetTier) models.SearchParams {
	return models.SearchParams{
		City:        "Austin",
		State:       "TX",
		Dates:       []string{"2025-06-01"},
		Budget:      budget,
		Preferences: "music",
	}
}

func TestGenerateFreeTierEndToEnd(t *testing.T) {
	t.Parallel()

	source := &fakeSource{events: []models.CandidateEvent{
		{
			Title:       "Open Air Concert",
			Description: "free live music on the lawn",
		},
		{
			Title:       "Songwriter Showcase",
			Description: "free admission, local artists",
		},
	}}
	gen := &fakeGenerator{response: `{"itinerary": [
		{"title": "Open Air Concert", "date": "2025-06-01", "start_time": "14:00", "end_time": "16:00", "estimated_cost": 0},
		{"title": "Songwriter Showcase", "date": "2025-06-01", "start_time": "19:00", "end_time": "21:00", "estimated_cost": 0},
		{"title": "Evening Stroll", "date": "2025-06-01", "start_time": "21:30", "end_time": "22:00"}
	]}`}

	svc, _ := newService(source, gen)
	it, err := svc.Generate(context.Background(), austinParams(models.BudgetTierFree))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if it.Curated {
		t.Error("live free events present, itinerary must not be curated")
	}
	for _, item := range it.Items {
		if item.EstimatedCost != 0 {
			t.Errorf("item %q cost = %v, want 0 for $0 tier", item.Title, item.EstimatedCost)
		}
	}
	if it.TotalCost != 0 {
		t.Errorf("total cost = %v, want 0", it.TotalCost)
	}
	// Both free-tagged events must have survived normalization into the prompt.
	for _, title := range []string{"Open Air Concert", "Songwriter Showcase"} {
		if !strings.Contains(gen.lastUser, title) {
			t.Errorf("prompt missing free event %q", title)
		}
	}
	if !strings.Contains(gen.lastUser, "0.00") {
		t.Error("prompt missing the $0 tier's numeric ceiling")
	}
}

func TestGenerateEventsSourceFailureFallsBack(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("upstream down")}
	gen := &fakeGenerator{response: `{"itinerary": [
		{"title": "Local Art Gallery Opening", "start_time": "10:00", "end_time": "12:00"}
	]}`}

	svc, _ := newService(source, gen)
	it, err := svc.Generate(context.Background(), austinParams(models.BudgetTierLow))
	if err != nil {
		t.Fatalf("Generate() error = %v, transport failure must degrade not fail", err)
	}
	if !it.Curated {
		t.Error("fallback-substituted itinerary must be marked curated")
	}
	if !strings.Contains(it.Summary, "Curated") {
		t.Errorf("summary %q must mark curated suggestions", it.Summary)
	}
}

func TestGenerateMalformedOutputSurfaces(t *testing.T) {
	t.Parallel()

	source := &fakeSource{events: []models.CandidateEvent{{Title: "Show", TicketInfo: []models.TicketInfo{{Price: "$10"}}}}}
	gen := &fakeGenerator{response: "sorry, I can't do that"}

	svc, registry := newService(source, gen)
	_, err := svc.Generate(context.Background(), austinParams(models.BudgetTierLow))
	if !errors.Is(err, planner.ErrGenerationMalformed) {
		t.Fatalf("error = %v, want ErrGenerationMalformed", err)
	}
	if registry.Len() != 0 {
		t.Error("no partial itinerary may be stored on generation failure")
	}
}

func TestRecalculateUnknownID(t *testing.T) {
	t.Parallel()

	svc, registry := newService(&fakeSource{}, &fakeGenerator{})
	_, err := svc.Recalculate(context.Background(), uuid.New(), "more food", nil)
	if !errors.Is(err, store.ErrItineraryNotFound) {
		t.Fatalf("error = %v, want ErrItineraryNotFound", err)
	}
	if registry.Len() != 0 {
		t.Error("failed recalculation must not create an entry")
	}
}

func TestRecalculateExclusionTriggersCuratedFallback(t *testing.T) {
	t.Parallel()

	source := &fakeSource{events: []models.CandidateEvent{
		{Title: "Live Jazz Night", TicketInfo: []models.TicketInfo{{Price: "$15"}}},
	}}
	gen := &fakeGenerator{response: `{"itinerary": [
		{"title": "Live Jazz Night", "start_time": "19:00", "end_time": "22:00", "estimated_cost": 15}
	]}`}

	svc, _ := newService(source, gen)
	original, err := svc.Generate(context.Background(), austinParams(models.BudgetTierLow))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	gen.response = `{"itinerary": [
		{"title": "Farmers Market", "start_time": "09:00", "end_time": "11:00"}
	]}`
	recalced, err := svc.Recalculate(context.Background(), original.ID, "", []string{"Live Jazz Night"})
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}

	if recalced.ID == original.ID {
		t.Fatal("recalculation must assign a fresh identifier")
	}
	if len(recalced.Items) == 0 {
		t.Fatal("recalculated itinerary must have at least one item")
	}
	if !recalced.Curated {
		t.Error("post-exclusion empty set must yield a curated itinerary")
	}
	if !strings.Contains(gen.lastUser, "Do not include these events: Live Jazz Night") {
		t.Error("prompt missing the exclusion directive phrase")
	}
	// The title may appear in the exclusion directive but must not appear
	// as a quoted JSON candidate.
	if strings.Contains(gen.lastUser, `"Live Jazz Night"`) {
		t.Error("excluded event leaked into the candidate list")
	}
}

func TestRecalculateNeverMutatesOriginal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{events: []models.CandidateEvent{
		{Title: "Museum Tour", TicketInfo: []models.TicketInfo{{Price: "$12"}}},
	}}
	gen := &fakeGenerator{response: `{"itinerary": [
		{"title": "Museum Tour", "start_time": "10:00", "end_time": "12:00", "estimated_cost": 12}
	]}`}

	svc, _ := newService(source, gen)
	original, err := svc.Generate(context.Background(), austinParams(models.BudgetTierLow))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	before, err := svc.Get(original.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if _, err := svc.Recalculate(context.Background(), original.ID, "add coffee shops", nil); err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}

	after, err := svc.Get(original.ID)
	if err != nil {
		t.Fatalf("Get() after recalculation error = %v", err)
	}
	if after.Params.Preferences != before.Params.Preferences {
		t.Errorf("original params mutated: %q -> %q", before.Params.Preferences, after.Params.Preferences)
	}
	if len(after.Itinerary.Items) != len(before.Itinerary.Items) || after.Itinerary.Items[0] != before.Itinerary.Items[0] {
		t.Error("original itinerary items mutated by recalculation")
	}
}

func TestMergePreferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		original   string
		extra      string
		exclusions []string
		want       string
	}{
		{name: "both empty", want: ""},
		{name: "only original", original: "music", want: "music"},
		{name: "only extra", extra: "food", want: "food"},
		{name: "both joined", original: "music", extra: "food", want: "music; food"},
		{
			name:       "exclusion directive appended",
			original:   "music",
			exclusions: []string{"Jazz Night", "Comedy Show"},
			want:       "music. Do not include these events: Jazz Night, Comedy Show",
		},
		{
			name:       "exclusions alone",
			exclusions: []string{"Jazz Night"},
			want:       "Do not include these events: Jazz Night",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mergePreferences(tt.original, tt.extra, tt.exclusions); got != tt.want {
				t.Errorf("mergePreferences() = %q, want %q", got, tt.want)
			}
		})
	}
}
