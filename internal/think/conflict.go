package think

import (
	"fmt"
	"sort"
	"time"

	"github.com/cardfile/cardfile/internal/models"
)

// upcomingWindow is how far ahead the deadline crunch check looks
const upcomingWindow = 48 * time.Hour

// overloadedDayThreshold is the number of same-day tasks one assignee can
// carry before the pass flags the day
const overloadedDayThreshold = 2

// ConflictPass flags scheduling trouble: overloaded days per assignee,
// overdue tasks, and deadlines landing within the next 48 hours.
func ConflictPass(cards []*models.Card, now time.Time) []models.SuggestionDraft {
	var drafts []models.SuggestionDraft
	drafts = append(drafts, overloadedDays(cards)...)

	var overdue, upcoming []*models.Card
	for _, card := range cards {
		if card.IsOverdue(now) {
			overdue = append(overdue, card)
		}
		if card.CardType == models.CardTypeTask &&
			card.Status == models.CardStatusActive &&
			card.Date != nil &&
			!card.Date.Before(now) &&
			card.Date.Before(now.Add(upcomingWindow)) {
			upcoming = append(upcoming, card)
		}
	}

	if len(overdue) > 0 {
		priority := models.PriorityHigh
		if len(overdue) > 5 {
			priority = models.PriorityUrgent
		}
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeConflict,
			Title:          "Overdue tasks piling up",
			Description:    fmt.Sprintf("%d task(s) are past their date. Reschedule or complete them.", len(overdue)),
			RelatedCardIDs: firstIDs(overdue, relatedCardLimit),
			Priority:       priority,
		})
	}

	if len(upcoming) > 0 {
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeConflict,
			Title:          "Deadlines in the next 48 hours",
			Description:    fmt.Sprintf("%d task(s) are due within two days.", len(upcoming)),
			RelatedCardIDs: allIDs(upcoming),
			Priority:       models.PriorityHigh,
		})
	}

	return drafts
}

func overloadedDays(cards []*models.Card) []models.SuggestionDraft {
	type dayKey struct {
		assignee string
		day      string
	}
	days := make(map[dayKey][]*models.Card)
	for _, card := range cards {
		if card.CardType != models.CardTypeTask || card.Assignee == "" || card.Date == nil {
			continue
		}
		key := dayKey{assignee: card.Assignee, day: card.Date.Format("2006-01-02")}
		days[key] = append(days[key], card)
	}

	keys := make([]dayKey, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].assignee != keys[j].assignee {
			return keys[i].assignee < keys[j].assignee
		}
		return keys[i].day < keys[j].day
	})

	var drafts []models.SuggestionDraft
	for _, key := range keys {
		group := days[key]
		if len(group) <= overloadedDayThreshold {
			continue
		}
		drafts = append(drafts, models.SuggestionDraft{
			OutputType:     models.SuggestionTypeConflict,
			Title:          fmt.Sprintf("Overloaded day for %s on %s", key.assignee, key.day),
			Description:    fmt.Sprintf("%s has %d tasks on %s. Consider spreading them out.", key.assignee, len(group), key.day),
			RelatedCardIDs: allIDs(group),
			Priority:       models.PriorityHigh,
		})
	}
	return drafts
}
