package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinThemeKeywordLength is the minimum length for a keyword to be
// considered for theme context matching
const MinThemeKeywordLength = 4

// SeedProjectImportance is the importance given to project contexts seeded
// from envelopes
const SeedProjectImportance = 7

// Refiner maintains the user context store as cards flow in: people gain
// importance when mentioned, themes collect related keywords, and stale
// entries decay out.
type Refiner struct {
	contexts  database.ContextRepositoryInterface
	envelopes database.EnvelopeRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

// NewRefiner creates a context refiner
func NewRefiner(contexts database.ContextRepositoryInterface, envelopes database.EnvelopeRepositoryInterface, logger *zap.Logger) *Refiner {
	return &Refiner{
		contexts:  contexts,
		envelopes: envelopes,
		logger:    logger,
		now:       time.Now,
	}
}

// RefineFromCard updates the context store to reflect a newly created card.
// Individual failures are collected rather than aborting; the card is
// already stored and refinement is advisory.
func (r *Refiner) RefineFromCard(ctx context.Context, card *models.Card) error {
	var errs []error

	if card.Assignee != "" {
		if err := r.touchPerson(ctx, card.Assignee); err != nil {
			errs = append(errs, fmt.Errorf("person context: %w", err))
		}
	}

	for _, keyword := range card.ContextKeywords {
		if len(keyword) >= MinThemeKeywordLength && isAlpha(keyword) {
			if err := r.touchTheme(ctx, keyword); err != nil {
				errs = append(errs, fmt.Errorf("theme context %q: %w", keyword, err))
			}
		}
	}

	if err := r.bumpKeywordContexts(ctx, card.ContextKeywords); err != nil {
		errs = append(errs, err)
	}

	if _, err := r.contexts.PurgeStale(ctx, r.now()); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Sweep runs the periodic maintenance pass: seed project contexts from
// project envelopes, then purge stale entries.
func (r *Refiner) Sweep(ctx context.Context) error {
	if err := r.seedProjectsFromEnvelopes(ctx); err != nil {
		return err
	}

	purged, err := r.contexts.PurgeStale(ctx, r.now())
	if err != nil {
		return err
	}
	if purged > 0 && r.logger != nil {
		r.logger.Info("purged_stale_contexts", zap.Int64("count", purged))
	}

	return nil
}

// touchPerson bumps an existing person context or creates one at default
// importance
func (r *Refiner) touchPerson(ctx context.Context, name string) error {
	uc, err := r.contexts.GetByTypeAndName(ctx, models.ContextTypePerson, name)
	if errors.Is(err, database.ErrNotFound) {
		return r.contexts.Create(ctx, &models.UserContext{
			ID:              uuid.New(),
			ContextType:     models.ContextTypePerson,
			Name:            name,
			Keywords:        []string{},
			ImportanceScore: models.DefaultImportance,
			LastReferenced:  r.now(),
		})
	}
	if err != nil {
		return err
	}

	uc.BumpImportance(1)
	uc.LastReferenced = r.now()
	return r.contexts.Update(ctx, uc)
}

// touchTheme refreshes an existing theme context that matches the keyword.
// Themes are never created here; they enter the store through other paths.
func (r *Refiner) touchTheme(ctx context.Context, keyword string) error {
	themes, err := r.contexts.FindThemesMatching(ctx, keyword)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		return nil
	}

	theme := themes[0]
	if !theme.HasKeyword(keyword) {
		theme.Keywords = append(theme.Keywords, keyword)
	}
	theme.LastReferenced = r.now()
	return r.contexts.Update(ctx, theme)
}

// bumpKeywordContexts raises the importance of every context that tracks
// one of the card's keywords
func (r *Refiner) bumpKeywordContexts(ctx context.Context, keywords []string) error {
	var errs []error
	for _, keyword := range keywords {
		contexts, err := r.contexts.ListWithKeyword(ctx, keyword)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, uc := range contexts {
			uc.BumpImportance(1)
			uc.LastReferenced = r.now()
			if err := r.contexts.Update(ctx, uc); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Refiner) seedProjectsFromEnvelopes(ctx context.Context) error {
	envelopes, err := r.envelopes.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, envelope := range envelopes {
		if envelope.EnvelopeType != "project" {
			continue
		}

		_, err := r.contexts.GetByTypeAndName(ctx, models.ContextTypeProject, envelope.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			errs = append(errs, err)
			continue
		}

		keywords := envelope.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		create := r.contexts.Create(ctx, &models.UserContext{
			ID:              uuid.New(),
			ContextType:     models.ContextTypeProject,
			Name:            envelope.Name,
			Description:     envelope.Description,
			Keywords:        keywords,
			ImportanceScore: SeedProjectImportance,
			LastReferenced:  r.now(),
		})
		if create != nil {
			errs = append(errs, create)
		}
	}
	return errors.Join(errs...)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
