package ai

import (
	"context"

	"github.com/cardfile/cardfile/internal/models"
)

// NoteExtractor turns raw note text into an untrusted structured guess.
// Implementations may call a remote language model or run entirely locally;
// callers must normalize the guess before persisting anything from it.
type NoteExtractor interface {
	ExtractNote(ctx context.Context, text string) (*models.NoteGuess, error)

	// Name identifies the extractor in logs
	Name() string
}

var (
	_ NoteExtractor = (*OpenAIExtractor)(nil)
	_ NoteExtractor = (*LocalExtractor)(nil)
	_ NoteExtractor = (*FallbackExtractor)(nil)
)
