package models

import (
	"time"

	"github.com/google/uuid"
)

// CardType classifies what kind of information a card captures
type CardType string

const (
	CardTypeTask     CardType = "task"
	CardTypeReminder CardType = "reminder"
	CardTypeIdea     CardType = "idea"
	CardTypeNote     CardType = "note"
)

// Priority represents the urgency of a card
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// CardStatus represents the lifecycle state of a card
type CardStatus string

const (
	CardStatusActive    CardStatus = "active"
	CardStatusCompleted CardStatus = "completed"
	CardStatusArchived  CardStatus = "archived"
)

// Card represents a structured record derived from one note
type Card struct {
	ID              uuid.UUID  `json:"id"`
	CardType        CardType   `json:"card_type"`
	Description     string     `json:"description"`
	Date            *time.Time `json:"date,omitempty"`
	Assignee        string     `json:"assignee,omitempty"`
	Priority        Priority   `json:"priority"`
	ContextKeywords []string   `json:"context_keywords"`
	Status          CardStatus `json:"status"`
	EnvelopeID      *uuid.UUID `json:"envelope_id,omitempty"`
	RawInput        string     `json:"raw_input"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NormalizeCardType maps an arbitrary string onto a valid CardType.
// Unknown values become CardTypeNote, never an error.
func NormalizeCardType(s string) CardType {
	switch CardType(s) {
	case CardTypeTask, CardTypeReminder, CardTypeIdea, CardTypeNote:
		return CardType(s)
	default:
		return CardTypeNote
	}
}

// NormalizePriority maps an arbitrary string onto a valid Priority.
// Unknown values become PriorityMedium, never an error.
func NormalizePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// PriorityRank returns a sortable rank for a priority (urgent first).
// Unknown priorities rank with medium.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// IsHighPriority reports whether the card is high or urgent priority.
func (c *Card) IsHighPriority() bool {
	return c.Priority == PriorityHigh || c.Priority == PriorityUrgent
}

// IsOverdue reports whether the card is an active task with a date in the past.
func (c *Card) IsOverdue(now time.Time) bool {
	return c.CardType == CardTypeTask &&
		c.Status == CardStatusActive &&
		c.Date != nil &&
		c.Date.Before(now)
}
