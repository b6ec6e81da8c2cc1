package think

import (
	"fmt"

	"github.com/cardfile/cardfile/internal/models"
)

const (
	// completionSampleSize is the minimum completed-task sample before the
	// pass reports a mean completion time
	completionSampleSize = 5
	// highPriorityOverloadThreshold is the number of active high or urgent
	// cards past which the workload warning fires
	highPriorityOverloadThreshold = 3
	// ideaBacklogThreshold triggers the convert-ideas advice
	ideaBacklogThreshold = 10
	// datelessTaskThreshold triggers the add-deadlines advice
	datelessTaskThreshold = 5
	// highActivityMinimum and highActivityRatio gate the activity note
	highActivityMinimum = 10
	highActivityRatio   = 0.8
)

// PatternPass surfaces behavioral observations: completion pace, workload,
// idea backlog, and missing deadlines.
func PatternPass(cards []*models.Card) []models.SuggestionDraft {
	var drafts []models.SuggestionDraft

	var completedTasks []*models.Card
	var highPriorityActive []*models.Card
	var ideas []*models.Card
	var datelessTasks []*models.Card
	active := 0
	for _, card := range cards {
		if card.Status == models.CardStatusActive {
			active++
		}
		if card.CardType == models.CardTypeTask && card.Status == models.CardStatusCompleted {
			completedTasks = append(completedTasks, card)
		}
		if card.Status == models.CardStatusActive && card.IsHighPriority() {
			highPriorityActive = append(highPriorityActive, card)
		}
		if card.CardType == models.CardTypeIdea {
			ideas = append(ideas, card)
		}
		if card.CardType == models.CardTypeTask && card.Status == models.CardStatusActive && card.Date == nil {
			datelessTasks = append(datelessTasks, card)
		}
	}

	if len(completedTasks) >= completionSampleSize {
		totalHours := 0.0
		for _, card := range completedTasks {
			totalHours += card.UpdatedAt.Sub(card.CreatedAt).Hours()
		}
		mean := totalHours / float64(len(completedTasks))
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:  models.SuggestionTypeRecommendation,
			Title:       "Your completion pace",
			Description: fmt.Sprintf("Across %d completed tasks you average %.1f hours from capture to done.", len(completedTasks), mean),
			Priority:    models.PriorityLow,
		})
	}

	if len(highPriorityActive) > highPriorityOverloadThreshold {
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          "Too much marked high priority",
			Description:    fmt.Sprintf("%d active cards are high or urgent. When everything is urgent, nothing is.", len(highPriorityActive)),
			RelatedCardIDs: firstIDs(highPriorityActive, relatedCardLimit),
			Priority:       models.PriorityHigh,
		})
	}

	if len(ideas) > ideaBacklogThreshold {
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          "Ideas are piling up",
			Description:    fmt.Sprintf("You have %d ideas on file. Converting the best ones into tasks would turn them into progress.", len(ideas)),
			RelatedCardIDs: firstIDs(ideas, relatedCardLimit),
			Priority:       models.PriorityMedium,
		})
	}

	if len(datelessTasks) > datelessTaskThreshold {
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeRecommendation,
			Title:          "Tasks without deadlines",
			Description:    fmt.Sprintf("%d active tasks have no date. Tasks with deadlines get done.", len(datelessTasks)),
			RelatedCardIDs: firstIDs(datelessTasks, relatedCardLimit),
			Priority:       models.PriorityMedium,
		})
	}

	if len(cards) >= highActivityMinimum {
		ratio := float64(active) / float64(len(cards))
		if ratio > highActivityRatio {
			drafts = append(drafts, models.SuggestionDraft{
				OutputType:  models.SuggestionTypeRecommendation,
				Title:       "High activity",
				Description: fmt.Sprintf("%.0f%% of your %d cards are active. You are capturing a lot; make sure things also get closed.", ratio*100, len(cards)),
				Priority:    models.PriorityLow,
			})
		}
	}

	return drafts
}
