package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionType classifies a generated suggestion
type SuggestionType string

const (
	SuggestionTypeNextStep       SuggestionType = "next_step"
	SuggestionTypeConflict       SuggestionType = "conflict"
	SuggestionTypeRecommendation SuggestionType = "recommendation"
)

// SuggestionStatus represents the lifecycle state of a suggestion
type SuggestionStatus string

const (
	SuggestionStatusPending      SuggestionStatus = "pending"
	SuggestionStatusAcknowledged SuggestionStatus = "acknowledged"
	SuggestionStatusDismissed    SuggestionStatus = "dismissed"
)

// Suggestion is a recommendation produced by an analysis run
type Suggestion struct {
	ID             uuid.UUID        `json:"id"`
	OutputType     SuggestionType   `json:"output_type"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	RelatedCardIDs []uuid.UUID      `json:"related_card_ids"`
	Priority       Priority         `json:"priority"`
	Status         SuggestionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SuggestionDraft is an unpersisted suggestion emitted by an analyzer pass
type SuggestionDraft struct {
	OutputType     SuggestionType
	Title          string
	Description    string
	RelatedCardIDs []uuid.UUID
	Priority       Priority
}
