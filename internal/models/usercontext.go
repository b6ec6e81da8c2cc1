package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextType classifies a user context entry
type ContextType string

const (
	ContextTypePerson  ContextType = "person"
	ContextTypeProject ContextType = "project"
	ContextTypeCompany ContextType = "company"
	ContextTypeTheme   ContextType = "theme"
)

const (
	// MinImportance is the lower clamp for importance scores
	MinImportance = 1
	// MaxImportance is the upper clamp for importance scores
	MaxImportance = 10
	// DefaultImportance is the initial importance of a new context entry
	DefaultImportance = 5
	// StaleImportanceThreshold marks entries eligible for garbage collection
	StaleImportanceThreshold = 3
	// ContextRetention is how long an unreferenced context entry is kept
	ContextRetention = 90 * 24 * time.Hour
)

// UserContext is a decaying relevance entry for a person, project, or theme.
// It is not shown to the end user directly but biases future matching.
type UserContext struct {
	ID              uuid.UUID   `json:"id"`
	ContextType     ContextType `json:"context_type"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Keywords        []string    `json:"keywords"`
	ImportanceScore int         `json:"importance_score"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	LastReferenced  time.Time   `json:"last_referenced"`
}

// BumpImportance adjusts the importance score by delta, clamped to [1, 10].
func (c *UserContext) BumpImportance(delta int) {
	score := c.ImportanceScore + delta
	if score > MaxImportance {
		score = MaxImportance
	}
	if score < MinImportance {
		score = MinImportance
	}
	c.ImportanceScore = score
}

// HasKeyword reports whether the context's keyword set contains the
// keyword (case-insensitive).
func (c *UserContext) HasKeyword(keyword string) bool {
	norm := normalizeKeyword(keyword)
	for _, kw := range c.Keywords {
		if normalizeKeyword(kw) == norm {
			return true
		}
	}
	return false
}

// IsStale reports whether the entry is eligible for garbage collection:
// last referenced before the retention cutoff and below the importance
// threshold.
func (c *UserContext) IsStale(now time.Time) bool {
	return c.LastReferenced.Before(now.Add(-ContextRetention)) &&
		c.ImportanceScore < StaleImportanceThreshold
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}
