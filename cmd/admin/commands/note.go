package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/extract"
	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/cardfile/cardfile/internal/services/ai"
	"github.com/spf13/cobra"
)

// NewNoteCmd creates the note command
func NewNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note [text]",
		Short: "Ingest a raw note",
		Long:  "Run a raw note through the full ingestion pipeline and print the stored card",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			cardRepo := database.NewCardRepository(db)
			envelopeRepo := database.NewEnvelopeRepository(db)
			contextRepo := database.NewContextRepository(db)

			extractor := ai.NewExtractor(ai.ExtractorConfig{
				OpenAIKey: cfg.OpenAIKey,
				Model:     cfg.AIModel,
				BaseURL:   cfg.AIBaseURL,
				Timeout:   cfg.AITimeout,
			}, nil, nil)

			pipeline := ingest.NewPipeline(
				extractor,
				ingest.NewNormalizer(extract.New()),
				ingest.NewEnvelopeMatcher(envelopeRepo, nil),
				ingest.NewRefiner(contextRepo, envelopeRepo, nil),
				cardRepo,
				nil,
			)

			result, err := pipeline.ProcessNote(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to process note: %w", err)
			}

			card := result.Card
			fmt.Printf("Card %s\n", card.ID)
			fmt.Printf("  Type:     %s\n", card.CardType)
			fmt.Printf("  Priority: %s\n", card.Priority)
			fmt.Printf("  Text:     %s\n", card.Description)
			if card.Date != nil {
				fmt.Printf("  Date:     %s\n", card.Date.Format("2006-01-02 15:04"))
			}
			if card.Assignee != "" {
				fmt.Printf("  Assignee: %s\n", card.Assignee)
			}
			if result.Envelope != nil {
				fmt.Printf("  Envelope: %s\n", result.Envelope.Name)
			} else {
				fmt.Println("  Envelope: (unassigned)")
			}
			if len(card.ContextKeywords) > 0 {
				fmt.Printf("  Keywords: %s\n", strings.Join(card.ContextKeywords, ", "))
			}

			return nil
		},
	}

	return cmd
}
