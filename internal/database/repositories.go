package database

import (
	"context"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

// CardRepositoryInterface defines the interface for card repository operations
// This interface enables better testability by allowing mock implementations
type CardRepositoryInterface interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error)
	List(ctx context.Context, filter CardFilter) ([]*models.Card, error)
	Search(ctx context.Context, text string) ([]*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Card, error)
	ListUpcoming(ctx context.Context, now time.Time, window time.Duration) ([]*models.Card, error)
}

// EnvelopeRepositoryInterface defines the interface for envelope repository operations
type EnvelopeRepositoryInterface interface {
	Create(ctx context.Context, envelope *models.Envelope) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Envelope, error)
	GetByName(ctx context.Context, name string) (*models.Envelope, error)
	List(ctx context.Context) ([]*models.Envelope, error)
	Update(ctx context.Context, envelope *models.Envelope) error
	Delete(ctx context.Context, id uuid.UUID) error
	Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID) (*models.Envelope, error)
	Stats(ctx context.Context, id uuid.UUID) (*models.EnvelopeStats, error)
}

// ContextRepositoryInterface defines the interface for user context repository operations
type ContextRepositoryInterface interface {
	Create(ctx context.Context, uc *models.UserContext) error
	Update(ctx context.Context, uc *models.UserContext) error
	GetByTypeAndName(ctx context.Context, contextType models.ContextType, name string) (*models.UserContext, error)
	FindThemesMatching(ctx context.Context, keyword string) ([]*models.UserContext, error)
	ListWithKeyword(ctx context.Context, keyword string) ([]*models.UserContext, error)
	List(ctx context.Context) ([]*models.UserContext, error)
	PurgeStale(ctx context.Context, now time.Time) (int64, error)
}

// SuggestionRepositoryInterface defines the interface for suggestion repository operations
type SuggestionRepositoryInterface interface {
	Create(ctx context.Context, s *models.Suggestion) error
	ListPending(ctx context.Context) ([]*models.Suggestion, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.SuggestionStatus) error
}

// Ensure concrete types implement the interfaces
var (
	_ CardRepositoryInterface       = (*CardRepository)(nil)
	_ EnvelopeRepositoryInterface   = (*EnvelopeRepository)(nil)
	_ ContextRepositoryInterface    = (*ContextRepository)(nil)
	_ SuggestionRepositoryInterface = (*SuggestionRepository)(nil)
)
