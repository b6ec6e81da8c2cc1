package commands

import (
	"context"
	"fmt"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSuggestionsCmd creates the suggestions command group
func NewSuggestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Inspect and resolve suggestions",
	}

	cmd.AddCommand(newSuggestionsListCmd())
	cmd.AddCommand(newSuggestionsSetStatusCmd("ack", "Acknowledge a suggestion", models.SuggestionStatusAcknowledged))
	cmd.AddCommand(newSuggestionsSetStatusCmd("dismiss", "Dismiss a suggestion", models.SuggestionStatusDismissed))

	return cmd
}

func newSuggestionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			suggestions, err := database.NewSuggestionRepository(db).ListPending(ctx)
			if err != nil {
				return fmt.Errorf("failed to list suggestions: %w", err)
			}

			if len(suggestions) == 0 {
				fmt.Println("No pending suggestions")
				return nil
			}

			for _, s := range suggestions {
				fmt.Printf("%s  [%s/%s] %s\n", s.ID, s.OutputType, s.Priority, s.Title)
				fmt.Printf("    %s\n", s.Description)
			}

			return nil
		},
	}
}

func newSuggestionsSetStatusCmd(use, short string, status models.SuggestionStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid suggestion id %q: %w", args[0], err)
			}

			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.NewSuggestionRepository(db).SetStatus(ctx, id, status); err != nil {
				return fmt.Errorf("failed to update suggestion: %w", err)
			}

			fmt.Printf("Suggestion %s is now %s\n", id, status)
			return nil
		},
	}
}
