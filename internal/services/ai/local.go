package ai

import (
	"context"

	"github.com/cardfile/cardfile/internal/extract"
	"github.com/cardfile/cardfile/internal/models"
)

// LocalExtractor runs the heuristic extraction pipeline in-process. It is
// the extractor of last resort and never fails.
type LocalExtractor struct {
	extractor *extract.Extractor
}

// NewLocalExtractor creates a local heuristic extractor
func NewLocalExtractor(extractor *extract.Extractor) *LocalExtractor {
	if extractor == nil {
		extractor = extract.New()
	}
	return &LocalExtractor{extractor: extractor}
}

// ExtractNote derives a guess from local heuristics only
func (l *LocalExtractor) ExtractNote(_ context.Context, text string) (*models.NoteGuess, error) {
	return l.extractor.Extract(text), nil
}

// Name identifies the extractor in logs
func (l *LocalExtractor) Name() string {
	return "local"
}
