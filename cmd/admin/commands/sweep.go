package commands

import (
	"context"
	"fmt"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/spf13/cobra"
)

// NewSweepCmd creates the sweep command
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a context maintenance sweep",
		Long:  "Seed project contexts from project envelopes and purge stale entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, db, closeDB, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			refiner := ingest.NewRefiner(
				database.NewContextRepository(db),
				database.NewEnvelopeRepository(db),
				nil,
			)

			if err := refiner.Sweep(ctx); err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			fmt.Println("Sweep complete")
			return nil
		},
	}
}
