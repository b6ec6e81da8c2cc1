package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

// SuggestionRepository handles suggestion database operations
type SuggestionRepository struct {
	db *DB
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(db *DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Create inserts a new suggestion
func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	query := `
		INSERT INTO suggestions (id, output_type, title, description, related_card_ids, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	relatedJSON, err := json.Marshal(s.RelatedCardIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal related card ids: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		s.ID,
		s.OutputType,
		s.Title,
		s.Description,
		relatedJSON,
		s.Priority,
		s.Status,
		time.Now(),
	).Scan(&s.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}

	return nil
}

// ListPending retrieves pending suggestions, newest first
func (r *SuggestionRepository) ListPending(ctx context.Context) ([]*models.Suggestion, error) {
	query := `
		SELECT id, output_type, title, description, related_card_ids, priority, status, created_at
		FROM suggestions
		WHERE status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		s := &models.Suggestion{}
		var relatedJSON []byte

		err := rows.Scan(
			&s.ID,
			&s.OutputType,
			&s.Title,
			&s.Description,
			&relatedJSON,
			&s.Priority,
			&s.Status,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}

		if err := json.Unmarshal(relatedJSON, &s.RelatedCardIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal related card ids: %w", err)
		}

		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}

	return suggestions, nil
}

// SetStatus transitions a pending suggestion to the given status
func (r *SuggestionRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.SuggestionStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE suggestions SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update suggestion status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("suggestion %s: %w", id, ErrNotFound)
	}

	return nil
}
