package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/spf13/cobra"
)

// NewEnvelopesCmd creates the envelopes command
func NewEnvelopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envelopes",
		Short: "List envelopes with their card counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			envelopes, err := database.NewEnvelopeRepository(db).List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list envelopes: %w", err)
			}

			if len(envelopes) == 0 {
				fmt.Println("No envelopes")
				return nil
			}

			for _, e := range envelopes {
				label := e.EnvelopeType
				if label == "" {
					label = "untyped"
				}
				fmt.Printf("%s  %s (%s, %d cards)\n", e.ID, e.Name, label, e.CardCount)
				if len(e.Keywords) > 0 {
					fmt.Printf("    keywords: %s\n", strings.Join(e.Keywords, ", "))
				}
			}

			return nil
		},
	}
}
