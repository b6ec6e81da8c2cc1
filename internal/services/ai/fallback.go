package ai

import (
	"context"
	"time"

	"github.com/cardfile/cardfile/internal/extract"
	"github.com/cardfile/cardfile/internal/models"
	"go.uber.org/zap"
)

// FallbackExtractor tries a primary extractor and falls back to a secondary
// one when it fails. A failing language model must never lose a note.
type FallbackExtractor struct {
	primary  NoteExtractor
	fallback NoteExtractor
	logger   *zap.Logger
}

// NewFallbackExtractor creates an extractor chain
func NewFallbackExtractor(primary, fallback NoteExtractor, logger *zap.Logger) *FallbackExtractor {
	return &FallbackExtractor{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Name identifies the extractor in logs
func (f *FallbackExtractor) Name() string {
	return f.primary.Name() + "+" + f.fallback.Name()
}

// ExtractNote runs the primary extractor and falls back on any error
func (f *FallbackExtractor) ExtractNote(ctx context.Context, text string) (*models.NoteGuess, error) {
	guess, err := f.primary.ExtractNote(ctx, text)
	if err == nil {
		return guess, nil
	}

	if f.logger != nil {
		f.logger.Warn("extractor_failed_falling_back",
			zap.String("extractor", f.primary.Name()),
			zap.String("fallback", f.fallback.Name()),
			zap.Error(err),
		)
	}

	return f.fallback.ExtractNote(ctx, text)
}

// ExtractorConfig holds the settings needed to assemble an extractor chain
type ExtractorConfig struct {
	OpenAIKey string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	DebugMode bool
}

// NewExtractor assembles the extractor chain for the given configuration.
// Without an API key the chain is heuristics only.
func NewExtractor(cfg ExtractorConfig, clock func() time.Time, logger *zap.Logger) NoteExtractor {
	var heuristics *extract.Extractor
	if clock != nil {
		heuristics = extract.NewWithClock(clock)
	} else {
		heuristics = extract.New()
	}
	local := NewLocalExtractor(heuristics)

	if cfg.OpenAIKey == "" {
		if logger != nil {
			logger.Info("no_api_key_using_local_extraction")
		}
		return local
	}

	remote := NewOpenAIExtractorWithLogger(cfg.OpenAIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, logger, cfg.DebugMode)
	return NewFallbackExtractor(remote, local, logger)
}
