package budget

import "github.com/metropolisapp/metropolis/internal/models"

// Limits are the cost ceilings and prompt instruction for a budget tier.
type Limits struct {
	PerItemMax float64
	TotalMax   float64
	// Instruction is the human-readable constraint embedded in the
	// generation request alongside the numeric ceilings.
	Instruction string
}

const (
	// DefaultPerItemMax is the per-item ceiling applied to unknown tiers.
	DefaultPerItemMax = 45.0
	// DefaultTotalMax is the total ceiling applied to unknown tiers.
	DefaultTotalMax = 150.0
	// RelaxationFactor widens the per-item ceiling on the second rung of
	// the relaxation ladder.
	RelaxationFactor = 2.0
	// MaxCandidates is the hard cap on candidates handed downstream.
	MaxCandidates = 20
)

var tierLimits = map[models.BudgetTier]Limits{
	models.BudgetTierFree: {
		PerItemMax:  0,
		TotalMax:    0,
		Instruction: "Only include events that are completely free. Every item's estimated_cost must be exactly 0.",
	},
	models.BudgetTierLow: {
		PerItemMax:  25,
		TotalMax:    50,
		Instruction: "Keep the day affordable: favor free and cheap events.",
	},
	models.BudgetTierModerate: {
		PerItemMax:  50,
		TotalMax:    100,
		Instruction: "A moderate budget: mix free events with a couple of paid ones.",
	},
	models.BudgetTierHigh: {
		PerItemMax:  125,
		TotalMax:    250,
		Instruction: "A comfortable budget: paid events and a nice meal are fine.",
	},
	models.BudgetTierPremium: {
		PerItemMax:  250,
		TotalMax:    500,
		Instruction: "A generous budget: premium events and experiences are encouraged.",
	},
	models.BudgetTierLuxury: {
		PerItemMax:  500,
		TotalMax:    2000,
		Instruction: "Budget is not a constraint: pick the best experiences available.",
	},
}

// LimitsFor maps a tier label to its cost ceilings. Unknown labels fall
// back to a conservative default rather than erroring.
func LimitsFor(tier models.BudgetTier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return Limits{
		PerItemMax:  DefaultPerItemMax,
		TotalMax:    DefaultTotalMax,
		Instruction: "Keep total spend modest; favor free and low-cost events.",
	}
}

// Relaxation identifies which rung of the relaxation ladder produced a
// candidate set.
type Relaxation int

const (
	// RelaxationNone means the strict per-item ceiling held.
	RelaxationNone Relaxation = iota
	// RelaxationDoubled means the ceiling was widened to 2x.
	RelaxationDoubled
	// RelaxationUnfiltered means all candidates were accepted up to the
	// hard cap.
	RelaxationUnfiltered
)

func (r Relaxation) String() string {
	switch r {
	case RelaxationNone:
		return "none"
	case RelaxationDoubled:
		return "doubled_ceiling"
	case RelaxationUnfiltered:
		return "unfiltered"
	default:
		return "unknown"
	}
}
