package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/cardfile/cardfile/internal/config"
	"github.com/cardfile/cardfile/internal/database"
)

// openDatabase loads config and connects to the database. The returned
// close function logs rather than fails; admin commands are short-lived.
func openDatabase(ctx context.Context) (*config.Config, *database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return cfg, db, closeDB, nil
}
