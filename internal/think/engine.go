package think

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs the analyzer passes over the full card and envelope state and
// persists the resulting drafts.
type Engine struct {
	cards       database.CardRepositoryInterface
	envelopes   database.EnvelopeRepositoryInterface
	suggestions database.SuggestionRepositoryInterface
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngine creates a suggestion engine
func NewEngine(
	cards database.CardRepositoryInterface,
	envelopes database.EnvelopeRepositoryInterface,
	suggestions database.SuggestionRepositoryInterface,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		cards:       cards,
		envelopes:   envelopes,
		suggestions: suggestions,
		logger:      logger,
		now:         time.Now,
	}
}

// NewEngineWithClock creates a suggestion engine with an injected clock
func NewEngineWithClock(
	cards database.CardRepositoryInterface,
	envelopes database.EnvelopeRepositoryInterface,
	suggestions database.SuggestionRepositoryInterface,
	logger *zap.Logger,
	now func() time.Time,
) *Engine {
	e := NewEngine(cards, envelopes, suggestions, logger)
	e.now = now
	return e
}

// Analyze loads the full card set, runs all four passes, and persists each
// draft as a pending suggestion. Drafts are stored independently; one
// failure does not block the rest, and the successfully stored suggestions
// are returned alongside the joined failure.
func (e *Engine) Analyze(ctx context.Context) ([]*models.Suggestion, error) {
	// Completed cards feed the next-step and pattern passes, so the load
	// is deliberately unfiltered; each pass narrows to what it needs.
	cards, err := e.cards.List(ctx, database.CardFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for analysis: %w", err)
	}
	envelopes, err := e.envelopes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load envelopes for analysis: %w", err)
	}

	now := e.now()
	var drafts []models.SuggestionDraft
	drafts = append(drafts, NextStepPass(cards, envelopes)...)
	drafts = append(drafts, ConflictPass(cards, now)...)
	drafts = append(drafts, ReorganizePass(cards, envelopes)...)
	drafts = append(drafts, PatternPass(cards)...)

	var created []*models.Suggestion
	var failures []error
	for _, draft := range drafts {
		suggestion := &models.Suggestion{
			ID:             uuid.New(),
			OutputType:     draft.OutputType,
			Title:          draft.Title,
			Description:    draft.Description,
			RelatedCardIDs: draft.RelatedCardIDs,
			Priority:       draft.Priority,
			Status:         models.SuggestionStatusPending,
		}
		if suggestion.RelatedCardIDs == nil {
			suggestion.RelatedCardIDs = []uuid.UUID{}
		}
		if err := e.suggestions.Create(ctx, suggestion); err != nil {
			failures = append(failures, fmt.Errorf("failed to store suggestion %q: %w", draft.Title, err))
			continue
		}
		created = append(created, suggestion)
	}

	if e.logger != nil {
		e.logger.Info("analysis_completed",
			zap.Int("cards", len(cards)),
			zap.Int("drafts", len(drafts)),
			zap.Int("stored", len(created)),
			zap.Int("failed", len(failures)),
		)
	}

	return created, errors.Join(failures...)
}
