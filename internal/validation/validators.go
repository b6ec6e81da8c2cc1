package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("card_type", validateCardType); err != nil {
		panic(fmt.Sprintf("failed to register card_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("card_status", validateCardStatus); err != nil {
		panic(fmt.Sprintf("failed to register card_status validator: %v", err))
	}
}

// validateCardType validates that a string is a valid CardType enum value
func validateCardType(fl validator.FieldLevel) bool {
	return ValidateCardType(fl.Field().String()) == nil
}

// validatePriority validates that a string is a valid Priority enum value
func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

// validateCardStatus validates that a string is a valid CardStatus enum value
func validateCardStatus(fl validator.FieldLevel) bool {
	return ValidateCardStatus(fl.Field().String()) == nil
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

// ValidateCardType validates a CardType string value
func ValidateCardType(value string) error {
	switch models.CardType(value) {
	case models.CardTypeTask, models.CardTypeReminder, models.CardTypeIdea, models.CardTypeNote:
		return nil
	default:
		return fmt.Errorf("invalid card_type: %s (must be 'task', 'reminder', 'idea', or 'note')", value)
	}
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', 'high', or 'urgent')", value)
	}
}

// ValidateCardStatus validates a CardStatus string value
func ValidateCardStatus(value string) error {
	switch models.CardStatus(value) {
	case models.CardStatusActive, models.CardStatusCompleted, models.CardStatusArchived:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'active', 'completed', or 'archived')", value)
	}
}

// ValidateSuggestionStatus validates a SuggestionStatus string value
func ValidateSuggestionStatus(value string) error {
	switch models.SuggestionStatus(value) {
	case models.SuggestionStatusPending, models.SuggestionStatusAcknowledged, models.SuggestionStatusDismissed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'acknowledged', or 'dismissed')", value)
	}
}
