// Package ingest turns raw notes into stored cards: extraction, repair of
// untrusted guesses, envelope matching, and user context refinement.
package ingest

import (
	"strings"

	"github.com/cardfile/cardfile/internal/extract"
	"github.com/cardfile/cardfile/internal/models"
)

// Normalizer repairs an untrusted extraction guess into canonical values.
// It never rejects a guess; malformed fields degrade to defaults so the
// note is always captured.
type Normalizer struct {
	extractor *extract.Extractor
}

// NewNormalizer creates a normalizer backed by the given heuristics
func NewNormalizer(extractor *extract.Extractor) *Normalizer {
	if extractor == nil {
		extractor = extract.New()
	}
	return &Normalizer{extractor: extractor}
}

// Normalize converts a guess into a canonical extraction result. The raw
// note is the description of last resort. Normalizing an already-normal
// guess changes nothing.
func (n *Normalizer) Normalize(guess *models.NoteGuess, rawNote string) *models.ExtractedNote {
	if guess == nil {
		guess = &models.NoteGuess{}
	}

	description := strings.TrimSpace(guess.Description)
	if description == "" {
		description = strings.TrimSpace(rawNote)
	}

	date := guess.Date
	if date == nil && guess.DateText != "" {
		date = n.extractor.ParseDate(guess.DateText)
	}

	return &models.ExtractedNote{
		CardType:       models.NormalizeCardType(guess.CardType),
		Description:    description,
		Date:           date,
		Assignee:       strings.TrimSpace(guess.Assignee),
		Priority:       models.NormalizePriority(guess.Priority),
		Keywords:       cleanList(guess.Keywords),
		ProjectContext: cleanList(guess.ProjectContext),
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
