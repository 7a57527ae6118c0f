package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/metropolisapp/metropolis/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("budget_tier", validateBudgetTier); err != nil {
		panic(fmt.Sprintf("failed to register budget_tier validator: %v", err))
	}
	if err := Validate.RegisterValidation("travel_mode", validateTravelMode); err != nil {
		panic(fmt.Sprintf("failed to register travel_mode validator: %v", err))
	}
	if err := Validate.RegisterValidation("trip_date", validateTripDate); err != nil {
		panic(fmt.Sprintf("failed to register trip_date validator: %v", err))
	}
}

// validateBudgetTier validates that a string is a valid BudgetTier enum value
func validateBudgetTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.BudgetTier(value) {
	case models.BudgetTierFree, models.BudgetTierLow, models.BudgetTierModerate,
		models.BudgetTierHigh, models.BudgetTierPremium, models.BudgetTierLuxury:
		return true
	default:
		return false
	}
}

// validateTravelMode validates that a string is a valid TravelMode enum value
func validateTravelMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.TravelMode(value) {
	case models.TravelModeWalking, models.TravelModeDriving, models.TravelModeBicycling, models.TravelModeTransit:
		return true
	default:
		return false
	}
}

// validateTripDate validates a YYYY-MM-DD date string
func validateTripDate(fl validator.FieldLevel) bool {
	return ValidateTripDate(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateBudgetTier validates a BudgetTier string value
func ValidateBudgetTier(value string) error {
	tier := models.BudgetTier(value)
	switch tier {
	case models.BudgetTierFree, models.BudgetTierLow, models.BudgetTierModerate,
		models.BudgetTierHigh, models.BudgetTierPremium, models.BudgetTierLuxury:
		return nil
	default:
		return fmt.Errorf("invalid budget: %s (must be '$0', '$1-$50', '$51-$100', '$101-$250', '$251-$500', or '$500+')", value)
	}
}

// ValidateTripDate validates a YYYY-MM-DD date string
func ValidateTripDate(value string) error {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
	}
	for i, r := range value {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
		}
	}
	return nil
}
