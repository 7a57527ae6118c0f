package events

import (
	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/budget"
	"github.com/metropolisapp/metropolis/internal/models"
)

// Result is the outcome of normalizing a raw candidate set. Fallback
// substitution is a visible branch here, not a caught exception: Curated
// is true when the synthetic set was substituted for live data.
type Result struct {
	Events     []models.CandidateEvent
	Relaxation budget.Relaxation
	Curated    bool
}

// Normalizer deduplicates, budget-filters, and caps candidate events,
// guaranteeing a non-empty result via synthetic fallback substitution.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger disables observability
// reporting but never changes filtering behavior.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize produces the candidate set handed to the plan builder.
// Ordering of operations is load-bearing: dedupe, budget filter (with the
// relaxation ladder), exclusion filter, then the fallback-substitution
// check, so an exclusion list that empties the set also triggers
// substitution. The returned slice is capped at budget.MaxCandidates.
func (n *Normalizer) Normalize(raw []models.CandidateEvent, tier models.BudgetTier, exclusions []string, city, firstDate string) Result {
	deduped := dedupe(raw)

	filtered, relaxation := n.filterByBudget(deduped, tier)
	filtered = applyExclusions(filtered, exclusions)

	if len(filtered) == 0 {
		n.logger.Info("fallback_substitution",
			zap.String("city", city),
			zap.String("tier", string(tier)),
			zap.Int("raw_events", len(raw)),
		)
		fallback := FallbackEvents(city, firstDate)
		if tier == models.BudgetTierFree {
			fallback = filterFree(fallback)
		}
		substituted := applyExclusions(fallback, exclusions)
		if len(substituted) == 0 {
			// Exclusions matched every synthetic event. The non-empty
			// guarantee outranks the exclusion list here.
			n.logger.Warn("exclusions_matched_entire_fallback_set",
				zap.Strings("exclusions", exclusions),
			)
			substituted = fallback
		}
		return Result{Events: cap20(substituted), Relaxation: relaxation, Curated: true}
	}

	return Result{Events: cap20(filtered), Relaxation: relaxation}
}

// filterByBudget applies the tier's per-item ceiling with the progressive
// relaxation ladder: strict, then 2x the ceiling, then unfiltered. The
// "$0" tier filters by free-membership instead of the numeric parser and
// does not relax; its empty case is handled by fallback substitution.
func (n *Normalizer) filterByBudget(events []models.CandidateEvent, tier models.BudgetTier) ([]models.CandidateEvent, budget.Relaxation) {
	if len(events) == 0 {
		return nil, budget.RelaxationNone
	}

	if tier == models.BudgetTierFree {
		return filterFree(events), budget.RelaxationNone
	}

	limits := budget.LimitsFor(tier)

	strict := filterUnderCeiling(events, limits.PerItemMax)
	if len(strict) > 0 {
		return strict, budget.RelaxationNone
	}

	doubled := filterUnderCeiling(events, limits.PerItemMax*budget.RelaxationFactor)
	if len(doubled) > 0 {
		n.logger.Info("budget_filter_relaxed",
			zap.String("tier", string(tier)),
			zap.String("relaxation", budget.RelaxationDoubled.String()),
			zap.Float64("ceiling", limits.PerItemMax*budget.RelaxationFactor),
			zap.Int("kept", len(doubled)),
		)
		return doubled, budget.RelaxationDoubled
	}

	n.logger.Info("budget_filter_relaxed",
		zap.String("tier", string(tier)),
		zap.String("relaxation", budget.RelaxationUnfiltered.String()),
		zap.Int("kept", len(events)),
	)
	return events, budget.RelaxationUnfiltered
}

func filterUnderCeiling(events []models.CandidateEvent, ceiling float64) []models.CandidateEvent {
	var kept []models.CandidateEvent
	for _, e := range events {
		if budget.Cost(e) <= ceiling {
			kept = append(kept, e)
		}
	}
	return kept
}

func filterFree(events []models.CandidateEvent) []models.CandidateEvent {
	var kept []models.CandidateEvent
	for _, e := range events {
		if budget.IsFree(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// applyExclusions removes events whose title exactly matches an entry in
// the caller-supplied exclusion list.
func applyExclusions(events []models.CandidateEvent, exclusions []string) []models.CandidateEvent {
	if len(exclusions) == 0 {
		return events
	}
	excluded := make(map[string]struct{}, len(exclusions))
	for _, title := range exclusions {
		excluded[title] = struct{}{}
	}
	var kept []models.CandidateEvent
	for _, e := range events {
		if _, skip := excluded[e.Title]; skip {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// dedupe drops later events whose title repeats an earlier one. Untitled
// events are kept as-is; there is nothing reliable to key them on.
func dedupe(events []models.CandidateEvent) []models.CandidateEvent {
	seen := make(map[string]struct{}, len(events))
	var kept []models.CandidateEvent
	for _, e := range events {
		if e.Title != "" {
			if _, dup := seen[e.Title]; dup {
				continue
			}
			seen[e.Title] = struct{}{}
		}
		kept = append(kept, e)
	}
	return kept
}

func cap20(events []models.CandidateEvent) []models.CandidateEvent {
	if len(events) > budget.MaxCandidates {
		return events[:budget.MaxCandidates]
	}
	return events
}
