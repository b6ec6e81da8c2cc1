package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/spf13/cobra"
)

// NewContextsCmd creates the contexts command
func NewContextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contexts",
		Short: "Summarize the user context store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			contexts, err := database.NewContextRepository(db).List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list contexts: %w", err)
			}

			if len(contexts) == 0 {
				fmt.Println("No user contexts")
				return nil
			}

			for _, uc := range contexts {
				fmt.Printf("[%s] %s (importance %d, last referenced %s)\n",
					uc.ContextType, uc.Name, uc.ImportanceScore,
					uc.LastReferenced.Format("2006-01-02"),
				)
				if len(uc.Keywords) > 0 {
					fmt.Printf("    keywords: %s\n", strings.Join(uc.Keywords, ", "))
				}
			}

			return nil
		},
	}
}
