package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a sql.DB connection pool
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection pool and verifies connectivity
func New(ctx context.Context, databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema if it does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS envelopes (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			envelope_type TEXT NOT NULL DEFAULT '',
			keywords JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id UUID PRIMARY KEY,
			card_type TEXT NOT NULL,
			description TEXT NOT NULL,
			date TIMESTAMPTZ,
			assignee TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			context_keywords JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'active',
			envelope_id UUID REFERENCES envelopes(id) ON DELETE SET NULL,
			raw_input TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_contexts (
			id UUID PRIMARY KEY,
			context_type TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			keywords JSONB NOT NULL DEFAULT '[]',
			importance_score INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			last_referenced TIMESTAMPTZ NOT NULL,
			UNIQUE (context_type, name)
		)`,
		`CREATE TABLE IF NOT EXISTS suggestions (
			id UUID PRIMARY KEY,
			output_type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			related_card_ids JSONB NOT NULL DEFAULT '[]',
			priority TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_status ON cards(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_envelope_id ON cards(envelope_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_date ON cards(date)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_status ON suggestions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_user_contexts_last_referenced ON user_contexts(last_referenced)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
