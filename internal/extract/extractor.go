// Package extract derives structured fields from free-form note text using
// local heuristics: part-of-speech tagging, named entity recognition, and
// pattern tables. It needs no network access and serves both as the fallback
// when no language model is configured and as the safety net when one fails.
package extract

import (
	"strings"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Extractor derives structured note fields from raw text
type Extractor struct {
	now       func() time.Time
	dateRules *when.Parser
}

// New creates an extractor using the system clock
func New() *Extractor {
	return NewWithClock(time.Now)
}

// NewWithClock creates an extractor with an injectable clock for
// deterministic date resolution
func NewWithClock(now func() time.Time) *Extractor {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Extractor{
		now:       now,
		dateRules: w,
	}
}

// Extract runs every heuristic over the note and assembles a guess.
// The description is the trimmed raw text; cleanup beyond trimming is the
// job of a language model, not these heuristics.
func (e *Extractor) Extract(text string) *models.NoteGuess {
	guess := &models.NoteGuess{
		CardType:       string(e.ClassifyCardType(text)),
		Description:    strings.TrimSpace(text),
		Priority:       string(e.ClassifyPriority(text)),
		Keywords:       e.Keywords(text, MaxKeywords),
		Assignee:       e.Assignee(text),
		ProjectContext: e.ProjectContext(text),
	}
	guess.Date = e.ParseDate(text)
	return guess
}
