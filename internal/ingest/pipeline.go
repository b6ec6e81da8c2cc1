package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardfile/cardfile/internal/database"
	logpkg "github.com/cardfile/cardfile/internal/logger"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/cardfile/cardfile/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyNote is returned when a note contains no usable text
var ErrEmptyNote = errors.New("note is empty")

// ProcessResult is the outcome of ingesting one note
type ProcessResult struct {
	Card          *models.Card          `json:"card"`
	Envelope      *models.Envelope      `json:"envelope,omitempty"`
	ExtractedInfo *models.ExtractedNote `json:"extracted_info"`
}

// BatchItem is the outcome of one note in a batch; failed notes carry an
// error message instead of a result
type BatchItem struct {
	Note   string         `json:"note"`
	Result *ProcessResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Pipeline ingests raw notes end to end: extract, normalize, route to an
// envelope, store the card, refine user context.
type Pipeline struct {
	extractor  ai.NoteExtractor
	normalizer *Normalizer
	matcher    *EnvelopeMatcher
	refiner    *Refiner
	cards      database.CardRepositoryInterface
	logger     *zap.Logger
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(
	extractor ai.NoteExtractor,
	normalizer *Normalizer,
	matcher *EnvelopeMatcher,
	refiner *Refiner,
	cards database.CardRepositoryInterface,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		normalizer: normalizer,
		matcher:    matcher,
		refiner:    refiner,
		cards:      cards,
		logger:     logger,
	}
}

// ProcessNote ingests a single raw note and returns the stored card, its
// envelope if any, and the extraction result. Envelope matching and context
// refinement are best-effort; only a storage failure loses the note.
func (p *Pipeline) ProcessNote(ctx context.Context, rawNote string) (*ProcessResult, error) {
	if rawNote == "" {
		return nil, ErrEmptyNote
	}

	if p.logger != nil {
		p.logger.Debug("note_received",
			zap.Int("length", len(rawNote)),
			zap.String("content", logpkg.SanitizeNoteContent(rawNote)),
		)
	}

	guess, err := p.extractor.ExtractNote(ctx, rawNote)
	if err != nil {
		return nil, fmt.Errorf("failed to extract note: %w", err)
	}

	extracted := p.normalizer.Normalize(guess, rawNote)

	envelope, err := p.matcher.Match(ctx, extracted)
	if err != nil {
		// An unassigned card beats a lost note
		if p.logger != nil {
			p.logger.Warn("envelope_match_failed", zap.Error(err))
		}
		envelope = nil
	}

	card := &models.Card{
		ID:              uuid.New(),
		CardType:        extracted.CardType,
		Description:     extracted.Description,
		Date:            extracted.Date,
		Assignee:        extracted.Assignee,
		Priority:        extracted.Priority,
		ContextKeywords: extracted.Keywords,
		Status:          models.CardStatusActive,
		RawInput:        rawNote,
	}
	if envelope != nil {
		card.EnvelopeID = &envelope.ID
	}

	if err := p.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to store card: %w", err)
	}

	if err := p.refiner.RefineFromCard(ctx, card); err != nil {
		if p.logger != nil {
			p.logger.Warn("context_refinement_failed",
				zap.String("card_id", card.ID.String()),
				zap.Error(err),
			)
		}
	}

	if p.logger != nil {
		p.logger.Info("note_processed",
			zap.String("card_id", card.ID.String()),
			zap.String("card_type", string(card.CardType)),
			zap.String("priority", string(card.Priority)),
			zap.Bool("has_envelope", envelope != nil),
		)
	}

	return &ProcessResult{
		Card:          card,
		Envelope:      envelope,
		ExtractedInfo: extracted,
	}, nil
}

// BatchProcess ingests several notes; a failed note is reported in its slot
// and does not stop the rest
func (p *Pipeline) BatchProcess(ctx context.Context, notes []string) []BatchItem {
	items := make([]BatchItem, 0, len(notes))
	for _, note := range notes {
		item := BatchItem{Note: note}
		result, err := p.ProcessNote(ctx, note)
		if err != nil {
			item.Error = err.Error()
			if p.logger != nil {
				p.logger.Warn("batch_note_failed", zap.Error(err))
			}
		} else {
			item.Result = result
		}
		items = append(items, item)
	}
	return items
}
