package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/budget"
	"github.com/metropolisapp/metropolis/internal/models"
)

// ErrGenerationMalformed indicates the generation output was not valid
// structured data. It is surfaced to the caller and intentionally not
// retried.
var ErrGenerationMalformed = errors.New("generation output malformed")

const systemPrompt = "You are an expert itinerary planner. You respond with valid JSON only."

// Builder converts normalized events and trip parameters into a
// generation request and coerces the returned plan into itinerary items.
type Builder struct {
	gen    Generator
	logger *zap.Logger
}

// NewBuilder creates a Builder backed by the given generation source.
func NewBuilder(gen Generator, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{gen: gen, logger: logger}
}

// BuildPlan requests a schedule of 3-5 items per day within a 10:00-22:00
// window, constrained by the tier's numeric ceilings. The ceilings are
// advisory to the generation step: the returned sum is not re-verified
// here. Structural parse failure surfaces ErrGenerationMalformed.
func (b *Builder) BuildPlan(ctx context.Context, events []models.CandidateEvent, dates []string, city string, tier models.BudgetTier, preferences string) ([]models.ItineraryItem, error) {
	prompt := buildPrompt(events, dates, city, tier, preferences)

	content, err := b.gen.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	records, err := parsePlanResponse(content)
	if err != nil {
		b.logger.Warn("generation_parse_failed",
			zap.String("city", city),
			zap.Int("response_length", len(content)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrGenerationMalformed, err)
	}

	firstDate := models.FirstDate(dates)
	items := make([]models.ItineraryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toItem(firstDate))
	}
	return items, nil
}

func buildPrompt(events []models.CandidateEvent, dates []string, city string, tier models.BudgetTier, preferences string) string {
	limits := budget.LimitsFor(tier)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a fun, optimized plan for a trip to %s covering these dates: %s.\n\n", city, strings.Join(dates, ", "))

	fmt.Fprintf(&sb, "Budget tier: %s\n", tier)
	fmt.Fprintf(&sb, "HARD CONSTRAINTS:\n")
	fmt.Fprintf(&sb, "- Each item's estimated_cost must be at most %.2f.\n", limits.PerItemMax)
	fmt.Fprintf(&sb, "- The sum of all estimated_cost values must be at most %.2f.\n", limits.TotalMax)
	fmt.Fprintf(&sb, "- %s\n", limits.Instruction)

	if preferences != "" {
		fmt.Fprintf(&sb, "\nIMPORTANT - User's interests: %s\nPrioritize events that match these interests.\n", preferences)
	}

	fmt.Fprintf(&sb, "\nAvailable events in the city:\n%s\n", models.MarshalEvents(events))

	sb.WriteString(`
YOUR TASK:
1. For EACH date, select 3-5 events that best match the user's interests and budget
2. Schedule them in a logical order with realistic timing
3. Leave travel buffers of 15-30 minutes between consecutive items
4. Include breaks for meals if needed
5. Start each day around 10:00, end by 22:00

Return ONLY a JSON object with this exact structure:
{
  "itinerary": [
    {
      "title": "Event name",
      "date": "YYYY-MM-DD",
      "start_time": "HH:MM",
      "end_time": "HH:MM",
      "location": "Full address",
      "description": "Brief fun description of why this is great",
      "ticket_info": "Price info or 'Free'",
      "estimated_cost": 0.00
    }
  ]
}
`)
	return sb.String()
}

// itemRecord is the structurally-typed wire shape of one generated item.
// Every field is optional; coercion applies the documented defaults.
type itemRecord struct {
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	TicketInfo    string    `json:"ticket_info"`
	EstimatedCost costValue `json:"estimated_cost"`
}

func (r itemRecord) toItem(firstDate string) models.ItineraryItem {
	date := r.Date
	if date == "" {
		date = firstDate
	}
	cost := float64(r.EstimatedCost)
	if cost < 0 {
		cost = 0
	}
	return models.ItineraryItem{
		Title:         r.Title,
		Date:          date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Location:      r.Location,
		Description:   r.Description,
		TicketInfo:    r.TicketInfo,
		EstimatedCost: cost,
	}
}

// costValue tolerates models emitting estimated_cost as a number, a
// quoted number, or a price string like "$15". Anything unparsable
// coerces to 0.
type costValue float64

func (c *costValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = costValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = costValue(budget.ParseCost(s))
		return nil
	}
	*c = 0
	return nil
}

// parsePlanResponse accepts either the documented {"itinerary": [...]}
// envelope or a bare JSON array, with one salvage pass that trims any
// leading/trailing prose around the outermost JSON value.
func parsePlanResponse(content string) ([]itemRecord, error) {
	trimmed := strings.TrimSpace(content)
	if records, err := decodePlan(trimmed); err == nil {
		return records, nil
	}

	salvaged := salvageJSON(trimmed)
	if salvaged == "" {
		return nil, fmt.Errorf("no JSON value found in response")
	}
	return decodePlan(salvaged)
}

func decodePlan(raw string) ([]itemRecord, error) {
	if strings.HasPrefix(raw, "[") {
		var records []itemRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var envelope struct {
		Itinerary []itemRecord `json:"itinerary"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, err
	}
	if envelope.Itinerary == nil {
		return nil, fmt.Errorf("response object has no itinerary array")
	}
	return envelope.Itinerary, nil
}

// salvageJSON extracts the outermost {...} or [...] span from text that
// wraps JSON in prose.
func salvageJSON(raw string) string {
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := bytes.IndexByte([]byte(raw), pair[0])
		end := bytes.LastIndexByte([]byte(raw), pair[1])
		if start != -1 && end > start {
			return raw[start : end+1]
		}
	}
	return ""
}
