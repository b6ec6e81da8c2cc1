package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type mockCardRepo struct {
	cards   []*models.Card
	listErr error
}

func (m *mockCardRepo) Create(_ context.Context, card *models.Card) error {
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	m.cards = append(m.cards, card)
	return nil
}

func (m *mockCardRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Card, error) {
	for _, card := range m.cards {
		if card.ID == id {
			return card, nil
		}
	}
	return nil, fmt.Errorf("card %s: %w", id, database.ErrNotFound)
}

func (m *mockCardRepo) List(_ context.Context, filter database.CardFilter) ([]*models.Card, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Card
	for _, card := range m.cards {
		if filter.Status != nil && card.Status != *filter.Status {
			continue
		}
		if filter.CardType != nil && card.CardType != *filter.CardType {
			continue
		}
		if filter.Assignee != nil && card.Assignee != *filter.Assignee {
			continue
		}
		if filter.Unassigned {
			if card.EnvelopeID != nil {
				continue
			}
		} else if filter.EnvelopeID != nil {
			if card.EnvelopeID == nil || *card.EnvelopeID != *filter.EnvelopeID {
				continue
			}
		}
		out = append(out, card)
	}
	return out, nil
}

func (m *mockCardRepo) Search(_ context.Context, text string) ([]*models.Card, error) {
	var out []*models.Card
	needle := strings.ToLower(text)
	for _, card := range m.cards {
		if strings.Contains(strings.ToLower(card.Description), needle) ||
			strings.Contains(strings.ToLower(card.RawInput), needle) {
			out = append(out, card)
		}
	}
	return out, nil
}

func (m *mockCardRepo) Update(_ context.Context, card *models.Card) error {
	for i, existing := range m.cards {
		if existing.ID == card.ID {
			card.UpdatedAt = time.Now()
			m.cards[i] = card
			return nil
		}
	}
	return fmt.Errorf("card %s: %w", card.ID, database.ErrNotFound)
}

func (m *mockCardRepo) MarkCompleted(_ context.Context, id uuid.UUID) error {
	for _, card := range m.cards {
		if card.ID == id {
			card.Status = models.CardStatusCompleted
			return nil
		}
	}
	return fmt.Errorf("card %s: %w", id, database.ErrNotFound)
}

func (m *mockCardRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, card := range m.cards {
		if card.ID == id {
			m.cards = append(m.cards[:i], m.cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("card %s: %w", id, database.ErrNotFound)
}

func (m *mockCardRepo) ListOverdue(_ context.Context, now time.Time) ([]*models.Card, error) {
	var out []*models.Card
	for _, card := range m.cards {
		if card.IsOverdue(now) {
			out = append(out, card)
		}
	}
	return out, nil
}

func (m *mockCardRepo) ListUpcoming(_ context.Context, now time.Time, window time.Duration) ([]*models.Card, error) {
	var out []*models.Card
	for _, card := range m.cards {
		if card.Date != nil && card.Date.After(now) && card.Date.Before(now.Add(window)) {
			out = append(out, card)
		}
	}
	return out, nil
}

var _ database.CardRepositoryInterface = (*mockCardRepo)(nil)

type mockEnvelopeRepo struct {
	envelopes []*models.Envelope
	mergeErr  error
}

func (m *mockEnvelopeRepo) Create(_ context.Context, envelope *models.Envelope) error {
	for _, existing := range m.envelopes {
		if existing.Name == envelope.Name {
			return &pq.Error{Code: "23505"}
		}
	}
	envelope.CreatedAt = time.Now()
	envelope.UpdatedAt = envelope.CreatedAt
	m.envelopes = append(m.envelopes, envelope)
	return nil
}

func (m *mockEnvelopeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Envelope, error) {
	for _, envelope := range m.envelopes {
		if envelope.ID == id {
			return envelope, nil
		}
	}
	return nil, fmt.Errorf("envelope %s: %w", id, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) GetByName(_ context.Context, name string) (*models.Envelope, error) {
	for _, envelope := range m.envelopes {
		if envelope.Name == name {
			return envelope, nil
		}
	}
	return nil, fmt.Errorf("envelope %q: %w", name, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) List(_ context.Context) ([]*models.Envelope, error) {
	return m.envelopes, nil
}

func (m *mockEnvelopeRepo) Update(_ context.Context, envelope *models.Envelope) error {
	for i, existing := range m.envelopes {
		if existing.ID == envelope.ID {
			m.envelopes[i] = envelope
			return nil
		}
	}
	return fmt.Errorf("envelope %s: %w", envelope.ID, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, envelope := range m.envelopes {
		if envelope.ID == id {
			m.envelopes = append(m.envelopes[:i], m.envelopes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("envelope %s: %w", id, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID) (*models.Envelope, error) {
	if m.mergeErr != nil {
		return nil, m.mergeErr
	}
	target, err := m.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	for _, sourceID := range sourceIDs {
		if sourceID == targetID {
			continue
		}
		source, err := m.GetByID(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		target.MergeKeywords(source.Keywords)
		_ = m.Delete(ctx, sourceID)
	}
	return target, nil
}

func (m *mockEnvelopeRepo) Stats(ctx context.Context, id uuid.UUID) (*models.EnvelopeStats, error) {
	if _, err := m.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return &models.EnvelopeStats{}, nil
}

var _ database.EnvelopeRepositoryInterface = (*mockEnvelopeRepo)(nil)

type mockContextRepo struct {
	contexts []*models.UserContext
}

func (m *mockContextRepo) Create(_ context.Context, uc *models.UserContext) error {
	m.contexts = append(m.contexts, uc)
	return nil
}

func (m *mockContextRepo) Update(_ context.Context, uc *models.UserContext) error {
	for i, existing := range m.contexts {
		if existing.ID == uc.ID {
			m.contexts[i] = uc
			return nil
		}
	}
	return fmt.Errorf("user context %s: %w", uc.ID, database.ErrNotFound)
}

func (m *mockContextRepo) GetByTypeAndName(_ context.Context, contextType models.ContextType, name string) (*models.UserContext, error) {
	for _, uc := range m.contexts {
		if uc.ContextType == contextType && uc.Name == name {
			return uc, nil
		}
	}
	return nil, fmt.Errorf("user context %s/%s: %w", contextType, name, database.ErrNotFound)
}

func (m *mockContextRepo) FindThemesMatching(_ context.Context, keyword string) ([]*models.UserContext, error) {
	var out []*models.UserContext
	for _, uc := range m.contexts {
		if uc.ContextType == models.ContextTypeTheme && strings.Contains(strings.ToLower(uc.Name), strings.ToLower(keyword)) {
			out = append(out, uc)
		}
	}
	return out, nil
}

func (m *mockContextRepo) ListWithKeyword(_ context.Context, keyword string) ([]*models.UserContext, error) {
	var out []*models.UserContext
	for _, uc := range m.contexts {
		if uc.HasKeyword(keyword) {
			out = append(out, uc)
		}
	}
	return out, nil
}

func (m *mockContextRepo) List(_ context.Context) ([]*models.UserContext, error) {
	return m.contexts, nil
}

func (m *mockContextRepo) PurgeStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

var _ database.ContextRepositoryInterface = (*mockContextRepo)(nil)

type mockSuggestionRepo struct {
	suggestions []*models.Suggestion
	createErr   error
}

func (m *mockSuggestionRepo) Create(_ context.Context, s *models.Suggestion) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.CreatedAt = time.Now()
	m.suggestions = append(m.suggestions, s)
	return nil
}

func (m *mockSuggestionRepo) ListPending(_ context.Context) ([]*models.Suggestion, error) {
	var out []*models.Suggestion
	for i := len(m.suggestions) - 1; i >= 0; i-- {
		if m.suggestions[i].Status == models.SuggestionStatusPending {
			out = append(out, m.suggestions[i])
		}
	}
	return out, nil
}

func (m *mockSuggestionRepo) SetStatus(_ context.Context, id uuid.UUID, status models.SuggestionStatus) error {
	for _, s := range m.suggestions {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return fmt.Errorf("suggestion %s: %w", id, database.ErrNotFound)
}

var _ database.SuggestionRepositoryInterface = (*mockSuggestionRepo)(nil)

// stubAnalyzer returns canned suggestions
type stubAnalyzer struct {
	created []*models.Suggestion
	err     error
}

func (s *stubAnalyzer) Analyze(_ context.Context) ([]*models.Suggestion, error) {
	return s.created, s.err
}

var errBoom = errors.New("boom")
