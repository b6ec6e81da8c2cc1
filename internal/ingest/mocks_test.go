package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type mockCardRepo struct {
	cards     []*models.Card
	createErr error
}

func (m *mockCardRepo) Create(_ context.Context, card *models.Card) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.cards = append(m.cards, card)
	return nil
}

func (m *mockCardRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Card, error) {
	for _, c := range m.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("card %s: %w", id, database.ErrNotFound)
}

func (m *mockCardRepo) List(_ context.Context, _ database.CardFilter) ([]*models.Card, error) {
	return m.cards, nil
}

func (m *mockCardRepo) Search(_ context.Context, _ string) ([]*models.Card, error) {
	return m.cards, nil
}

func (m *mockCardRepo) Update(_ context.Context, _ *models.Card) error { return nil }

func (m *mockCardRepo) MarkCompleted(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockCardRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockCardRepo) ListOverdue(_ context.Context, _ time.Time) ([]*models.Card, error) {
	return nil, nil
}

func (m *mockCardRepo) ListUpcoming(_ context.Context, _ time.Time, _ time.Duration) ([]*models.Card, error) {
	return nil, nil
}

type mockEnvelopeRepo struct {
	envelopes   []*models.Envelope
	createCalls int
	// raceOnCreate simulates losing a unique constraint race: the first
	// create fails and the envelope appears as if another writer won
	raceOnCreate bool
}

func (m *mockEnvelopeRepo) Create(_ context.Context, envelope *models.Envelope) error {
	m.createCalls++
	if m.raceOnCreate && m.createCalls == 1 {
		m.envelopes = append(m.envelopes, &models.Envelope{
			ID:           uuid.New(),
			Name:         envelope.Name,
			EnvelopeType: envelope.EnvelopeType,
			Keywords:     envelope.Keywords,
		})
		return &pq.Error{Code: "23505"}
	}
	m.envelopes = append(m.envelopes, envelope)
	return nil
}

func (m *mockEnvelopeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Envelope, error) {
	for _, e := range m.envelopes {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("envelope %s: %w", id, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) GetByName(_ context.Context, name string) (*models.Envelope, error) {
	for _, e := range m.envelopes {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("envelope %q: %w", name, database.ErrNotFound)
}

func (m *mockEnvelopeRepo) List(_ context.Context) ([]*models.Envelope, error) {
	return m.envelopes, nil
}

func (m *mockEnvelopeRepo) Update(_ context.Context, _ *models.Envelope) error { return nil }

func (m *mockEnvelopeRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockEnvelopeRepo) Merge(_ context.Context, targetID uuid.UUID, _ []uuid.UUID) (*models.Envelope, error) {
	return m.GetByID(context.Background(), targetID)
}

func (m *mockEnvelopeRepo) Stats(_ context.Context, _ uuid.UUID) (*models.EnvelopeStats, error) {
	return &models.EnvelopeStats{}, nil
}

type mockContextRepo struct {
	contexts   []*models.UserContext
	purgeCalls int
	updates    int
}

func (m *mockContextRepo) Create(_ context.Context, uc *models.UserContext) error {
	m.contexts = append(m.contexts, uc)
	return nil
}

func (m *mockContextRepo) Update(_ context.Context, uc *models.UserContext) error {
	m.updates++
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
	var matches []*models.UserContext
	for _, uc := range m.contexts {
		if uc.ContextType == models.ContextTypeTheme &&
			strings.Contains(strings.ToLower(uc.Name), strings.ToLower(keyword)) {
			matches = append(matches, uc)
		}
	}
	return matches, nil
}

func (m *mockContextRepo) ListWithKeyword(_ context.Context, keyword string) ([]*models.UserContext, error) {
	var matches []*models.UserContext
	for _, uc := range m.contexts {
		if uc.HasKeyword(keyword) {
			matches = append(matches, uc)
		}
	}
	return matches, nil
}

func (m *mockContextRepo) List(_ context.Context) ([]*models.UserContext, error) {
	return m.contexts, nil
}

func (m *mockContextRepo) PurgeStale(_ context.Context, now time.Time) (int64, error) {
	m.purgeCalls++
	var kept []*models.UserContext
	var purged int64
	for _, uc := range m.contexts {
		if uc.IsStale(now) {
			purged++
		} else {
			kept = append(kept, uc)
		}
	}
	m.contexts = kept
	return purged, nil
}

type mockExtractor struct {
	guess *models.NoteGuess
	err   error
}

func (m *mockExtractor) ExtractNote(_ context.Context, _ string) (*models.NoteGuess, error) {
	return m.guess, m.err
}

func (m *mockExtractor) Name() string { return "mock" }
