package extract

import (
	"regexp"
	"strings"

	"github.com/cardfile/cardfile/internal/models"
)

// Action verbs that mark a note as an actionable task when leading the
// note, or anywhere when the note also mentions a time.
var taskVerbs = []string{
	"call", "email", "send", "write", "create", "build",
	"finish", "complete", "do", "make", "schedule", "book",
	"buy", "order", "prepare", "review", "check", "update",
}

// Phrases expressing necessity; these mark a task wherever they appear
var necessityMarkers = []string{
	"need to", "must", "have to",
}

// Words that indicate the note carries a time reference
var timeMarkers = []string{
	"today", "tomorrow", "tonight", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday", "sunday", "next week", "next month",
	"this week", "this month", "morning", "afternoon", "evening", "o'clock",
}

var clockTimePattern = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\b\d{1,2}:\d{2}\b`)

var reminderMarkers = []string{
	"remind", "remember", "don't forget", "pick up",
	"bring", "take", "grab",
}

var ideaMarkers = []string{
	"idea", "concept", "thought", "what if", "maybe we could",
	"we should", "consider", "brainstorm",
}

var urgentMarkers = []string{
	"urgent", "asap", "immediately", "emergency", "critical",
	"right now", "right away", "crucial",
}

var highMarkers = []string{
	"important", "priority", "must", "need to", "deadline",
	"due", "required", "essential",
}

var lowMarkers = []string{
	"maybe", "someday", "eventually", "when possible",
	"if time", "optional", "consider",
}

// ClassifyCardType buckets a note into reminder, idea, task, or note, in
// that rule order. A note is a task when it starts with an action verb,
// expresses necessity, or pairs an action verb with a time reference.
// Anything unmatched is a plain note.
func (e *Extractor) ClassifyCardType(text string) models.CardType {
	lower := strings.ToLower(strings.TrimSpace(text))

	if containsAny(lower, reminderMarkers) {
		return models.CardTypeReminder
	}
	if containsAny(lower, ideaMarkers) {
		return models.CardTypeIdea
	}
	if isTask(lower) {
		return models.CardTypeTask
	}

	return models.CardTypeNote
}

func isTask(lower string) bool {
	for _, verb := range taskVerbs {
		if strings.HasPrefix(lower, verb) {
			return true
		}
	}
	if containsAny(lower, necessityMarkers) {
		return true
	}
	hasTime := containsAny(lower, timeMarkers) || clockTimePattern.MatchString(lower)
	if hasTime && containsAny(lower, taskVerbs) {
		return true
	}
	return false
}

// ClassifyPriority scores urgency from marker words. Urgent markers win over
// high markers, which win over low markers; unmarked notes are medium.
func (e *Extractor) ClassifyPriority(text string) models.Priority {
	lower := strings.ToLower(text)

	if containsAny(lower, urgentMarkers) {
		return models.PriorityUrgent
	}
	if containsAny(lower, highMarkers) {
		return models.PriorityHigh
	}
	if containsAny(lower, lowMarkers) {
		return models.PriorityLow
	}

	return models.PriorityMedium
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
