package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

func TestRefinerCreatesPersonContext(t *testing.T) {
	t.Parallel()

	contexts := &mockContextRepo{}
	r := NewRefiner(contexts, &mockEnvelopeRepo{}, nil)

	card := &models.Card{ID: uuid.New(), Assignee: "Sarah"}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, err := contexts.GetByTypeAndName(context.Background(), models.ContextTypePerson, "Sarah")
	if err != nil {
		t.Fatalf("expected person context created: %v", err)
	}
	if uc.ImportanceScore != models.DefaultImportance {
		t.Errorf("expected default importance, got %d", uc.ImportanceScore)
	}
}

func TestRefinerBumpsExistingPerson(t *testing.T) {
	t.Parallel()

	existing := &models.UserContext{
		ID:              uuid.New(),
		ContextType:     models.ContextTypePerson,
		Name:            "Sarah",
		ImportanceScore: 9,
		LastReferenced:  time.Now().Add(-30 * 24 * time.Hour),
	}
	contexts := &mockContextRepo{contexts: []*models.UserContext{existing}}
	r := NewRefiner(contexts, &mockEnvelopeRepo{}, nil)

	card := &models.Card{ID: uuid.New(), Assignee: "Sarah"}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, _ := contexts.GetByTypeAndName(context.Background(), models.ContextTypePerson, "Sarah")
	if uc.ImportanceScore != models.MaxImportance {
		t.Errorf("expected importance clamped at %d, got %d", models.MaxImportance, uc.ImportanceScore)
	}
}

func TestRefinerTouchesThemeButNeverCreates(t *testing.T) {
	t.Parallel()

	theme := &models.UserContext{
		ID:              uuid.New(),
		ContextType:     models.ContextTypeTheme,
		Name:            "marketing",
		Keywords:        []string{"campaign"},
		ImportanceScore: 5,
		LastReferenced:  time.Now(),
	}
	contexts := &mockContextRepo{contexts: []*models.UserContext{theme}}
	r := NewRefiner(contexts, &mockEnvelopeRepo{}, nil)

	card := &models.Card{ID: uuid.New(), ContextKeywords: []string{"marketing", "synergy"}}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, _ := contexts.GetByTypeAndName(context.Background(), models.ContextTypeTheme, "marketing")
	if !updated.HasKeyword("marketing") {
		t.Errorf("expected keyword appended to theme, got %v", updated.Keywords)
	}

	// "synergy" matched no theme; no theme may be created for it
	for _, uc := range contexts.contexts {
		if uc.ContextType == models.ContextTypeTheme && uc.Name == "synergy" {
			t.Error("refiner must not create theme contexts")
		}
	}
}

func TestRefinerSkipsShortAndNonAlphaKeywords(t *testing.T) {
	t.Parallel()

	theme := &models.UserContext{
		ID:              uuid.New(),
		ContextType:     models.ContextTypeTheme,
		Name:            "q3 planning",
		ImportanceScore: 5,
		LastReferenced:  time.Now(),
	}
	contexts := &mockContextRepo{contexts: []*models.UserContext{theme}}
	r := NewRefiner(contexts, &mockEnvelopeRepo{}, nil)

	card := &models.Card{ID: uuid.New(), ContextKeywords: []string{"q3", "2025budget"}}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, _ := contexts.GetByTypeAndName(context.Background(), models.ContextTypeTheme, "q3 planning")
	if len(updated.Keywords) != 0 {
		t.Errorf("short or non-alpha keywords must not touch themes, got %v", updated.Keywords)
	}
}

func TestRefinerBumpsKeywordContexts(t *testing.T) {
	t.Parallel()

	project := &models.UserContext{
		ID:              uuid.New(),
		ContextType:     models.ContextTypeProject,
		Name:            "Atlas",
		Keywords:        []string{"budget"},
		ImportanceScore: 5,
		LastReferenced:  time.Now().Add(-10 * 24 * time.Hour),
	}
	contexts := &mockContextRepo{contexts: []*models.UserContext{project}}
	r := NewRefiner(contexts, &mockEnvelopeRepo{}, nil)

	card := &models.Card{ID: uuid.New(), ContextKeywords: []string{"budget"}}
	if err := r.RefineFromCard(context.Background(), card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, _ := contexts.GetByTypeAndName(context.Background(), models.ContextTypeProject, "Atlas")
	if uc.ImportanceScore != 6 {
		t.Errorf("expected importance bumped to 6, got %d", uc.ImportanceScore)
	}
	if contexts.purgeCalls == 0 {
		t.Error("expected stale purge to run after refinement")
	}
}

func TestSweepSeedsProjectContextsFromEnvelopes(t *testing.T) {
	t.Parallel()

	envelopes := &mockEnvelopeRepo{envelopes: []*models.Envelope{
		{ID: uuid.New(), Name: "Atlas", EnvelopeType: "project", Keywords: []string{"atlas"}},
		{ID: uuid.New(), Name: "Inbox", EnvelopeType: "theme"},
	}}
	contexts := &mockContextRepo{}
	r := NewRefiner(contexts, envelopes, nil)

	if err := r.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, err := contexts.GetByTypeAndName(context.Background(), models.ContextTypeProject, "Atlas")
	if err != nil {
		t.Fatalf("expected project context seeded: %v", err)
	}
	if uc.ImportanceScore != SeedProjectImportance {
		t.Errorf("expected importance %d, got %d", SeedProjectImportance, uc.ImportanceScore)
	}

	if _, err := contexts.GetByTypeAndName(context.Background(), models.ContextTypeProject, "Inbox"); err == nil {
		t.Error("non-project envelopes must not seed project contexts")
	}

	// Sweeping again must not duplicate
	if err := r.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, uc := range contexts.contexts {
		if uc.ContextType == models.ContextTypeProject && uc.Name == "Atlas" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one Atlas project context, got %d", count)
	}
}
