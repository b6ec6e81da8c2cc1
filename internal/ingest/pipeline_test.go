package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/cardfile/cardfile/internal/models"
)

func newTestPipeline(extractorGuess *models.NoteGuess, extractorErr error) (*Pipeline, *mockCardRepo, *mockEnvelopeRepo, *mockContextRepo) {
	cards := &mockCardRepo{}
	envelopes := &mockEnvelopeRepo{}
	contexts := &mockContextRepo{}

	p := NewPipeline(
		&mockExtractor{guess: extractorGuess, err: extractorErr},
		NewNormalizer(nil),
		NewEnvelopeMatcher(envelopes, nil),
		NewRefiner(contexts, envelopes, nil),
		cards,
		nil,
	)
	return p, cards, envelopes, contexts
}

func TestProcessNoteStoresCardAndEnvelope(t *testing.T) {
	t.Parallel()

	guess := &models.NoteGuess{
		CardType:       "task",
		Description:    "Call Sarah about the Q3 budget",
		Assignee:       "Sarah",
		Priority:       "medium",
		Keywords:       []string{"call", "budget"},
		ProjectContext: []string{"Q3"},
	}
	p, cards, envelopes, contexts := newTestPipeline(guess, nil)

	result, err := p.ProcessNote(context.Background(), "Call Sarah about the Q3 budget next Monday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Card == nil || result.Card.CardType != models.CardTypeTask {
		t.Fatalf("expected stored task card, got %+v", result.Card)
	}
	if result.Card.Status != models.CardStatusActive {
		t.Errorf("expected active status, got %s", result.Card.Status)
	}
	if result.Card.RawInput != "Call Sarah about the Q3 budget next Monday" {
		t.Errorf("raw input not preserved: %q", result.Card.RawInput)
	}
	if len(cards.cards) != 1 {
		t.Fatalf("expected one stored card, got %d", len(cards.cards))
	}

	if result.Envelope == nil || result.Envelope.Name != "Q3" {
		t.Fatalf("expected Q3 envelope, got %+v", result.Envelope)
	}
	if result.Card.EnvelopeID == nil || *result.Card.EnvelopeID != result.Envelope.ID {
		t.Error("card not linked to its envelope")
	}
	if len(envelopes.envelopes) != 1 {
		t.Errorf("expected one envelope, got %d", len(envelopes.envelopes))
	}

	if _, err := contexts.GetByTypeAndName(context.Background(), models.ContextTypePerson, "Sarah"); err != nil {
		t.Errorf("expected person context from refinement: %v", err)
	}

	if result.ExtractedInfo == nil || result.ExtractedInfo.Priority != models.PriorityMedium {
		t.Errorf("expected extracted info in result, got %+v", result.ExtractedInfo)
	}
}

func TestProcessNoteEmptyInput(t *testing.T) {
	t.Parallel()

	p, cards, _, _ := newTestPipeline(nil, nil)

	if _, err := p.ProcessNote(context.Background(), ""); !errors.Is(err, ErrEmptyNote) {
		t.Errorf("expected ErrEmptyNote, got %v", err)
	}
	if len(cards.cards) != 0 {
		t.Error("no card may be stored for an empty note")
	}
}

func TestProcessNoteStorageFailureIsFatal(t *testing.T) {
	t.Parallel()

	p, cards, _, _ := newTestPipeline(&models.NoteGuess{CardType: "note"}, nil)
	cards.createErr = errors.New("db down")

	if _, err := p.ProcessNote(context.Background(), "some note"); err == nil {
		t.Error("expected storage failure to surface")
	}
}

func TestProcessNoteExtractionFailureIsFatal(t *testing.T) {
	t.Parallel()

	// The extractor chain normally falls back internally; if even that
	// fails the note is rejected rather than stored half-empty
	p, cards, _, _ := newTestPipeline(nil, errors.New("model unreachable"))

	if _, err := p.ProcessNote(context.Background(), "some note"); err == nil {
		t.Error("expected extraction failure to surface")
	}
	if len(cards.cards) != 0 {
		t.Error("no card may be stored when extraction fails")
	}
}

func TestBatchProcessIsolatesFailures(t *testing.T) {
	t.Parallel()

	p, cards, _, _ := newTestPipeline(&models.NoteGuess{CardType: "note"}, nil)

	items := p.BatchProcess(context.Background(), []string{"first note", "", "third note"})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Error != "" || items[0].Result == nil {
		t.Errorf("expected first note to succeed: %+v", items[0])
	}
	if items[1].Error == "" {
		t.Error("expected empty note to fail in its slot")
	}
	if items[2].Error != "" || items[2].Result == nil {
		t.Errorf("expected third note to succeed: %+v", items[2])
	}
	if len(cards.cards) != 2 {
		t.Errorf("expected 2 stored cards, got %d", len(cards.cards))
	}
}
