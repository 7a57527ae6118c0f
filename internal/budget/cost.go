package budget

import (
	"strconv"
	"strings"

	"github.com/metropolisapp/metropolis/internal/models"
)

// ParseCost extracts a numeric cost estimate from a free-text price
// fragment ("$15", "Free", "$20-$30", "1,200"). Ranges resolve to the
// lower bound. Any parse failure fails soft to 0.0; this function never
// returns a negative value and never panics.
func ParseCost(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0.0
	}
	if strings.Contains(strings.ToLower(text), "free") {
		return 0.0
	}

	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(text)
	// Range: take the lower bound.
	if i := strings.Index(cleaned, "-"); i > 0 {
		cleaned = cleaned[:i]
	}

	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0.0
	}
	return value
}

// IsFree reports whether an event is free-labeled. The test is a
// case-insensitive substring match over the event's entire stringified
// record: an intentionally loose heuristic that wins over any stray
// nonzero price fragment on the same event.
func IsFree(event models.CandidateEvent) bool {
	return strings.Contains(event.Text(), "free")
}

// Cost returns the best-effort numeric cost of an event: the first
// ticket-info fragment with a parsable nonzero price, else 0.0.
func Cost(event models.CandidateEvent) float64 {
	for _, ti := range event.TicketInfo {
		if ti.Price == "" {
			continue
		}
		if c := ParseCost(ti.Price); c > 0 {
			return c
		}
	}
	return 0.0
}
