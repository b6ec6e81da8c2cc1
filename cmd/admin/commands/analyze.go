package commands

import (
	"context"
	"fmt"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/think"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a suggestion analysis",
		Long:  "Run the suggestion engine over the full card store and print the new suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			engine := think.NewEngine(
				database.NewCardRepository(db),
				database.NewEnvelopeRepository(db),
				database.NewSuggestionRepository(db),
				nil,
			)

			created, err := engine.Analyze(ctx)
			if len(created) == 0 && err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			if err != nil {
				fmt.Printf("Warning: some suggestions were not stored: %v\n", err)
			}

			if len(created) == 0 {
				fmt.Println("No new suggestions")
				return nil
			}

			fmt.Printf("Created %d suggestions:\n", len(created))
			for _, s := range created {
				fmt.Printf("  [%s/%s] %s\n", s.OutputType, s.Priority, s.Title)
				fmt.Printf("      %s\n", s.Description)
			}

			return nil
		},
	}

	return cmd
}
