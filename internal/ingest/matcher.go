package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchThreshold is the minimum normalized score for a keyword match to
// place a card in an existing envelope
const MatchThreshold = 0.3

// Weights for the envelope match score. Keyword overlap dominates; the
// envelope name and description appearing in the card's context add less.
const (
	keywordOverlapWeight = 0.6
	nameMatchWeight      = 0.3
	descriptionWeight    = 0.1
)

// EnvelopeMatcher routes an extracted note to an envelope: an exact project
// name match first, then keyword similarity, then a new envelope when the
// note names a project nothing matches.
type EnvelopeMatcher struct {
	envelopes database.EnvelopeRepositoryInterface
	logger    *zap.Logger
}

// NewEnvelopeMatcher creates an envelope matcher
func NewEnvelopeMatcher(envelopes database.EnvelopeRepositoryInterface, logger *zap.Logger) *EnvelopeMatcher {
	return &EnvelopeMatcher{
		envelopes: envelopes,
		logger:    logger,
	}
}

// Match finds or creates the envelope for an extracted note. A nil envelope
// with nil error means the card stays unassigned.
func (m *EnvelopeMatcher) Match(ctx context.Context, extracted *models.ExtractedNote) (*models.Envelope, error) {
	// Exact project name match wins
	for _, name := range extracted.ProjectContext {
		envelope, err := m.envelopes.GetByName(ctx, name)
		if err == nil {
			return envelope, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}

	if len(extracted.Keywords) > 0 {
		envelope, err := m.bestKeywordMatch(ctx, extracted.Keywords)
		if err != nil {
			return nil, err
		}
		if envelope != nil {
			return envelope, nil
		}
	}

	if len(extracted.ProjectContext) > 0 {
		return m.createProjectEnvelope(ctx, extracted.ProjectContext[0], extracted.Keywords)
	}

	return nil, nil
}

func (m *EnvelopeMatcher) bestKeywordMatch(ctx context.Context, keywords []string) (*models.Envelope, error) {
	envelopes, err := m.envelopes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list envelopes for matching: %w", err)
	}

	contextText := strings.ToLower(strings.Join(keywords, " "))

	var best *models.Envelope
	bestScore := 0.0
	for _, envelope := range envelopes {
		score := MatchScore(envelope, keywords, contextText)
		if score > bestScore {
			bestScore = score
			best = envelope
		}
	}

	if bestScore > MatchThreshold {
		if m.logger != nil {
			m.logger.Debug("envelope_matched_by_keywords",
				zap.String("envelope", best.Name),
				zap.Float64("score", bestScore),
			)
		}
		return best, nil
	}
	return nil, nil
}

// createProjectEnvelope creates an envelope for a newly seen project name.
// Two notes naming the same new project can race here; the loser of the
// unique constraint re-fetches instead of failing.
func (m *EnvelopeMatcher) createProjectEnvelope(ctx context.Context, name string, keywords []string) (*models.Envelope, error) {
	envelope := &models.Envelope{
		ID:           uuid.New(),
		Name:         name,
		EnvelopeType: "project",
		Keywords:     keywords,
	}
	if envelope.Keywords == nil {
		envelope.Keywords = []string{}
	}

	err := m.envelopes.Create(ctx, envelope)
	if err == nil {
		if m.logger != nil {
			m.logger.Info("envelope_created", zap.String("envelope", name))
		}
		return envelope, nil
	}

	if database.IsUniqueViolation(err) {
		return m.envelopes.GetByName(ctx, name)
	}
	return nil, err
}

// MatchScore rates how well an envelope fits a card's keywords and context
// text. The keyword weight only counts toward the normalizer when both
// sides have keywords to compare.
func MatchScore(envelope *models.Envelope, keywords []string, contextText string) float64 {
	score := 0.0
	totalPossible := 0.0

	envelopeKeywords := toSet(envelope.Keywords)
	cardKeywords := toSet(keywords)

	if len(envelopeKeywords) > 0 && len(cardKeywords) > 0 {
		overlap := 0
		for kw := range cardKeywords {
			if envelopeKeywords[kw] {
				overlap++
			}
		}
		union := len(envelopeKeywords) + len(cardKeywords) - overlap
		if union > 0 {
			score += float64(overlap) / float64(union) * keywordOverlapWeight
			totalPossible += keywordOverlapWeight
		}
	}

	contextText = strings.ToLower(contextText)
	if strings.Contains(contextText, strings.ToLower(envelope.Name)) {
		score += nameMatchWeight
	}
	totalPossible += nameMatchWeight

	if envelope.Description != "" {
		if strings.Contains(contextText, strings.ToLower(envelope.Description)) {
			score += descriptionWeight
		}
		totalPossible += descriptionWeight
	}

	if totalPossible == 0 {
		return 0
	}
	return score / totalPossible
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
