// Package think generates suggestions from the current card and envelope
// state. Four independent passes each reduce (cards, envelopes) to drafts;
// the engine concatenates them and persists every draft as a pending
// suggestion.
package think

import (
	"fmt"
	"sort"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

// UnassignedBucketName labels the virtual envelope holding cards without one
const UnassignedBucketName = "Unorganized"

// relatedCardLimit caps how many card ids a draft references
const relatedCardLimit = 5

// NextStepPass proposes the next logical task for every envelope that still
// has active cards, plus the unassigned bucket.
func NextStepPass(cards []*models.Card, envelopes []*models.Envelope) []models.SuggestionDraft {
	groups := make(map[uuid.UUID][]*models.Card)
	var unassigned []*models.Card
	for _, card := range cards {
		if card.EnvelopeID == nil {
			unassigned = append(unassigned, card)
			continue
		}
		groups[*card.EnvelopeID] = append(groups[*card.EnvelopeID], card)
	}

	var drafts []models.SuggestionDraft
	for _, envelope := range envelopes {
		if draft, ok := nextStepForGroup(envelope.Name, groups[envelope.ID]); ok {
			drafts = append(drafts, draft)
		}
	}
	if draft, ok := nextStepForGroup(UnassignedBucketName, unassigned); ok {
		drafts = append(drafts, draft)
	}
	return drafts
}

func nextStepForGroup(name string, group []*models.Card) (models.SuggestionDraft, bool) {
	var active, completed []*models.Card
	for _, card := range group {
		switch card.Status {
		case models.CardStatusActive:
			active = append(active, card)
		case models.CardStatusCompleted:
			completed = append(completed, card)
		}
	}
	if len(active) == 0 {
		return models.SuggestionDraft{}, false
	}

	next := nextLogicalTask(active)

	if len(completed) > 0 {
		related := []uuid.UUID{next.ID}
		for _, card := range lastN(completed, 2) {
			related = append(related, card.ID)
		}
		return models.SuggestionDraft{
			OutputType:     models.SuggestionTypeNextStep,
			Title:          fmt.Sprintf("Keep momentum in %s", name),
			Description:    fmt.Sprintf("You have completed %d card(s) here already. The next logical step: %s", len(completed), next.Description),
			RelatedCardIDs: related,
			Priority:       models.PriorityMedium,
		}, true
	}

	return models.SuggestionDraft{
		OutputType:     models.SuggestionTypeNextStep,
		Title:          fmt.Sprintf("Get started on %s", name),
		Description:    fmt.Sprintf("Nothing here is done yet. A good first step: %s", next.Description),
		RelatedCardIDs: []uuid.UUID{next.ID},
		Priority:       models.PriorityLow,
	}, true
}

// nextLogicalTask orders active cards by priority, then date with undated
// cards last, then age, and returns the winner.
func nextLogicalTask(active []*models.Card) *models.Card {
	sorted := make([]*models.Card, len(active))
	copy(sorted, active)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		switch {
		case a.Date != nil && b.Date != nil && !a.Date.Equal(*b.Date):
			return a.Date.Before(*b.Date)
		case a.Date != nil && b.Date == nil:
			return true
		case a.Date == nil && b.Date != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted[0]
}

func lastN(cards []*models.Card, n int) []*models.Card {
	if len(cards) <= n {
		return cards
	}
	return cards[len(cards)-n:]
}

func firstIDs(cards []*models.Card, n int) []uuid.UUID {
	if len(cards) < n {
		n = len(cards)
	}
	ids := make([]uuid.UUID, 0, n)
	for _, card := range cards[:n] {
		ids = append(ids, card.ID)
	}
	return ids
}

func allIDs(cards []*models.Card) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	return ids
}
