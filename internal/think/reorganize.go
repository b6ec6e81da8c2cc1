package think

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

const (
	// unassignedBacklogThreshold triggers the organize advice
	unassignedBacklogThreshold = 3
	// envelopeSplitThreshold is the card count past which an envelope
	// should be split
	envelopeSplitThreshold = 10
	// unassignedTaskThreshold triggers the group-your-tasks advice
	unassignedTaskThreshold = 5
)

// ReorganizePass suggests structural cleanups: organizing the unassigned
// backlog, consolidating recurring ideas, and splitting oversized envelopes.
func ReorganizePass(cards []*models.Card, envelopes []*models.Envelope) []models.SuggestionDraft {
	var drafts []models.SuggestionDraft

	var unassignedActive []*models.Card
	var unassignedTasks []*models.Card
	var ideas []*models.Card
	byEnvelope := make(map[uuid.UUID][]*models.Card)
	for _, card := range cards {
		if card.EnvelopeID != nil {
			byEnvelope[*card.EnvelopeID] = append(byEnvelope[*card.EnvelopeID], card)
		}
		if card.CardType == models.CardTypeIdea {
			ideas = append(ideas, card)
		}
		if card.EnvelopeID == nil && card.Status == models.CardStatusActive {
			unassignedActive = append(unassignedActive, card)
			if card.CardType == models.CardTypeTask {
				unassignedTasks = append(unassignedTasks, card)
			}
		}
	}

	if len(unassignedActive) > unassignedBacklogThreshold {
		drafts = append(drafts, organizeBacklog(unassignedActive))
	}

	drafts = append(drafts, consolidateIdeas(ideas)...)

	for _, envelope := range envelopes {
		group := byEnvelope[envelope.ID]
		if len(group) > envelopeSplitThreshold {
			drafts = append(drafts, models.SuggestionDraft{
				OutputType:     models.SuggestionTypeRecommendation,
				Title:          fmt.Sprintf("Split the %s envelope", envelope.Name),
				Description:    fmt.Sprintf("%s holds %d cards. Splitting it into smaller envelopes would keep it navigable.", envelope.Name, len(group)),
				RelatedCardIDs: firstIDs(group, relatedCardLimit),
				Priority:       models.PriorityLow,
			})
		}
	}

	if len(unassignedTasks) > unassignedTaskThreshold {
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          "Group your loose tasks",
			Description:    fmt.Sprintf("%d tasks sit outside any envelope. Grouping them by project would make the next step clearer.", len(unassignedTasks)),
			RelatedCardIDs: firstIDs(unassignedTasks, relatedCardLimit),
			Priority:       models.PriorityMedium,
		})
	}

	return drafts
}

// organizeBacklog emits a themed suggestion when the unassigned cards share
// recurring keywords, or a generic one otherwise.
func organizeBacklog(unassigned []*models.Card) models.SuggestionDraft {
	themes := recurringKeywords(unassigned, 2)
	if len(themes) > 0 {
		if len(themes) > 3 {
			themes = themes[:3]
		}
		return models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          "Organize your unassigned cards",
			Description:    fmt.Sprintf("%d unassigned cards share themes: %s. Consider an envelope for each.", len(unassigned), strings.Join(themes, ", ")),
			RelatedCardIDs: firstIDs(unassigned, relatedCardLimit),
			Priority:       models.PriorityMedium,
		}
	}
	return models.SuggestionDraft{
		OutputType:     models.SuggestionTypeRecommendation,
		Title:          "Organize your unassigned cards",
		Description:    fmt.Sprintf("%d cards sit outside any envelope. A quick sorting pass would help.", len(unassigned)),
		RelatedCardIDs: firstIDs(unassigned, relatedCardLimit),
		Priority:       models.PriorityLow,
	}
}

func consolidateIdeas(ideas []*models.Card) []models.SuggestionDraft {
	if len(ideas) < 3 {
		return nil
	}

	shared := recurringKeywords(ideas, 3)
	var drafts []models.SuggestionDraft
	for _, keyword := range shared {
		var related []*models.Card
		for _, idea := range ideas {
			if hasKeyword(idea, keyword) {
				related = append(related, idea)
			}
		}
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          fmt.Sprintf("Consolidate your %q ideas", keyword),
			Description:    fmt.Sprintf("%d ideas touch on %q. Merging them into one plan could move them forward.", len(related), keyword),
			RelatedCardIDs: allIDs(related),
			Priority:       models.PriorityMedium,
		})
	}
	return drafts
}

// recurringKeywords returns keywords appearing on at least minCards cards,
// most frequent first, ties broken alphabetically.
func recurringKeywords(cards []*models.Card, minCards int) []string {
	counts := make(map[string]int)
	for _, card := range cards {
		seen := make(map[string]bool, len(card.ContextKeywords))
		for _, kw := range card.ContextKeywords {
			norm := strings.ToLower(kw)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			counts[norm]++
		}
	}

	var recurring []string
	for kw, count := range counts {
		if count >= minCards {
			recurring = append(recurring, kw)
		}
	}
	sort.Slice(recurring, func(i, j int) bool {
		if counts[recurring[i]] != counts[recurring[j]] {
			return counts[recurring[i]] > counts[recurring[j]]
		}
		return recurring[i] < recurring[j]
	})
	return recurring
}

func hasKeyword(card *models.Card, keyword string) bool {
	for _, kw := range card.ContextKeywords {
		if strings.EqualFold(kw, keyword) {
			return true
		}
	}
	return false
}
