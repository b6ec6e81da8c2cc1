package models

import (
	"time"

	"github.com/google/uuid"
)

// Envelope represents a named collection of related cards
type Envelope struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	EnvelopeType string    `json:"envelope_type,omitempty"` // project, company, person, theme
	Keywords     []string  `json:"keywords"`
	CardCount    int       `json:"card_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EnvelopeStats summarizes the cards held by an envelope
type EnvelopeStats struct {
	TotalCards   int `json:"total_cards"`
	Tasks        int `json:"tasks"`
	Reminders    int `json:"reminders"`
	Ideas        int `json:"ideas"`
	Notes        int `json:"notes"`
	Active       int `json:"active"`
	Completed    int `json:"completed"`
	Archived     int `json:"archived"`
	HighPriority int `json:"high_priority"`
}

// MergeKeywords unions new keywords into the envelope's keyword set,
// preserving existing order and deduplicating case-insensitively.
func (e *Envelope) MergeKeywords(keywords []string) {
	seen := make(map[string]bool, len(e.Keywords))
	for _, kw := range e.Keywords {
		seen[normalizeKeyword(kw)] = true
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		norm := normalizeKeyword(kw)
		if !seen[norm] {
			seen[norm] = true
			e.Keywords = append(e.Keywords, kw)
		}
	}
}
