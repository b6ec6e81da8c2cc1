package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EnvelopeRepository handles envelope database operations
type EnvelopeRepository struct {
	db *DB
}

// NewEnvelopeRepository creates a new envelope repository
func NewEnvelopeRepository(db *DB) *EnvelopeRepository {
	return &EnvelopeRepository{db: db}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Concurrent envelope creation for the same name relies on this
// to fall back to a lookup instead of failing the note.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const envelopeColumns = `
	e.id, e.name, e.description, e.envelope_type, e.keywords,
	(SELECT COUNT(*) FROM cards c WHERE c.envelope_id = e.id) AS card_count,
	e.created_at, e.updated_at
`

// Create inserts a new envelope. Callers should check IsUniqueViolation on
// failure and re-fetch by name when racing another creator.
func (r *EnvelopeRepository) Create(ctx context.Context, envelope *models.Envelope) error {
	query := `
		INSERT INTO envelopes (id, name, description, envelope_type, keywords, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	keywordsJSON, err := json.Marshal(envelope.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		envelope.ID,
		envelope.Name,
		envelope.Description,
		envelope.EnvelopeType,
		keywordsJSON,
		now,
		now,
	).Scan(&envelope.CreatedAt, &envelope.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create envelope: %w", err)
	}

	return nil
}

// GetByID retrieves an envelope by ID
func (r *EnvelopeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Envelope, error) {
	query := fmt.Sprintf(`SELECT %s FROM envelopes e WHERE e.id = $1`, envelopeColumns)
	envelope, err := scanEnvelope(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("envelope %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope: %w", err)
	}
	return envelope, nil
}

// GetByName retrieves an envelope by its exact name
func (r *EnvelopeRepository) GetByName(ctx context.Context, name string) (*models.Envelope, error) {
	query := fmt.Sprintf(`SELECT %s FROM envelopes e WHERE e.name = $1`, envelopeColumns)
	envelope, err := scanEnvelope(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("envelope %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope by name: %w", err)
	}
	return envelope, nil
}

// List retrieves all envelopes ordered by name
func (r *EnvelopeRepository) List(ctx context.Context) ([]*models.Envelope, error) {
	query := fmt.Sprintf(`SELECT %s FROM envelopes e ORDER BY e.name ASC`, envelopeColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []*models.Envelope
	for rows.Next() {
		envelope, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan envelope: %w", err)
		}
		envelopes = append(envelopes, envelope)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate envelopes: %w", err)
	}

	return envelopes, nil
}

// Update updates an envelope's mutable fields
func (r *EnvelopeRepository) Update(ctx context.Context, envelope *models.Envelope) error {
	query := `
		UPDATE envelopes
		SET name = $2, description = $3, envelope_type = $4, keywords = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	keywordsJSON, err := json.Marshal(envelope.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		envelope.ID,
		envelope.Name,
		envelope.Description,
		envelope.EnvelopeType,
		keywordsJSON,
		time.Now(),
	).Scan(&envelope.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("envelope %s: %w", envelope.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update envelope: %w", err)
	}

	return nil
}

// Delete removes an envelope. Cards in the envelope are detached, not
// deleted, via the ON DELETE SET NULL foreign key.
func (r *EnvelopeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM envelopes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete envelope: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("envelope %s: %w", id, ErrNotFound)
	}

	return nil
}

// Merge moves all cards from the source envelopes into the target, unions
// the keyword sets, and deletes the sources, in one transaction.
func (r *EnvelopeRepository) Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID) (*models.Envelope, error) {
	target, err := r.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sourceID := range sourceIDs {
		if sourceID == targetID {
			continue
		}

		var keywordsJSON []byte
		err := tx.QueryRowContext(ctx,
			`SELECT keywords FROM envelopes WHERE id = $1`, sourceID,
		).Scan(&keywordsJSON)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("envelope %s: %w", sourceID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read source envelope: %w", err)
		}

		var keywords []string
		if err := json.Unmarshal(keywordsJSON, &keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source keywords: %w", err)
		}
		target.MergeKeywords(keywords)

		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET envelope_id = $1, updated_at = $2 WHERE envelope_id = $3`,
			targetID, time.Now(), sourceID,
		); err != nil {
			return nil, fmt.Errorf("failed to move cards: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM envelopes WHERE id = $1`, sourceID,
		); err != nil {
			return nil, fmt.Errorf("failed to delete source envelope: %w", err)
		}
	}

	mergedKeywords, err := json.Marshal(target.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged keywords: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE envelopes SET keywords = $2, updated_at = $3 WHERE id = $1`,
		targetID, mergedKeywords, time.Now(),
	); err != nil {
		return nil, fmt.Errorf("failed to update merged keywords: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}

	return r.GetByID(ctx, targetID)
}

// Stats summarizes the cards held by an envelope
func (r *EnvelopeRepository) Stats(ctx context.Context, id uuid.UUID) (*models.EnvelopeStats, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE card_type = 'task'),
			COUNT(*) FILTER (WHERE card_type = 'reminder'),
			COUNT(*) FILTER (WHERE card_type = 'idea'),
			COUNT(*) FILTER (WHERE card_type = 'note'),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'archived'),
			COUNT(*) FILTER (WHERE priority IN ('high', 'urgent'))
		FROM cards
		WHERE envelope_id = $1
	`

	stats := &models.EnvelopeStats{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stats.TotalCards,
		&stats.Tasks,
		&stats.Reminders,
		&stats.Ideas,
		&stats.Notes,
		&stats.Active,
		&stats.Completed,
		&stats.Archived,
		&stats.HighPriority,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope stats: %w", err)
	}

	return stats, nil
}

func scanEnvelope(row rowScanner) (*models.Envelope, error) {
	envelope := &models.Envelope{}
	var keywordsJSON []byte

	err := row.Scan(
		&envelope.ID,
		&envelope.Name,
		&envelope.Description,
		&envelope.EnvelopeType,
		&keywordsJSON,
		&envelope.CardCount,
		&envelope.CreatedAt,
		&envelope.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywordsJSON, &envelope.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}

	return envelope, nil
}
