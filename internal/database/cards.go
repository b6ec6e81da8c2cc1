package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
)

// CardRepository handles card database operations
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

// CardFilter narrows a card listing. Nil fields are ignored. Unassigned
// selects cards with no envelope and takes precedence over EnvelopeID.
type CardFilter struct {
	Status     *models.CardStatus
	CardType   *models.CardType
	Assignee   *string
	DateFrom   *time.Time
	DateTo     *time.Time
	EnvelopeID *uuid.UUID
	Unassigned bool
}

const cardColumns = `id, card_type, description, date, assignee, priority, context_keywords, status, envelope_id, raw_input, created_at, updated_at`

// Create inserts a new card
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, card_type, description, date, assignee, priority, context_keywords, status, envelope_id, raw_input, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	keywordsJSON, err := json.Marshal(card.ContextKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal context keywords: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		card.ID,
		card.CardType,
		card.Description,
		card.Date,
		card.Assignee,
		card.Priority,
		keywordsJSON,
		card.Status,
		card.EnvelopeID,
		card.RawInput,
		now,
		now,
	).Scan(&card.CreatedAt, &card.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = $1`, cardColumns)
	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// List retrieves cards matching the filter, newest first
func (r *CardRepository) List(ctx context.Context, filter CardFilter) ([]*models.Card, error) {
	query, args := buildCardListQuery(filter)
	return r.queryCards(ctx, query, args...)
}

func buildCardListQuery(filter CardFilter) (string, []any) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE 1=1`, cardColumns)
	args := []any{}
	argIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.CardType != nil {
		query += fmt.Sprintf(" AND card_type = $%d", argIndex)
		args = append(args, string(*filter.CardType))
		argIndex++
	}
	if filter.Assignee != nil {
		query += fmt.Sprintf(" AND assignee = $%d", argIndex)
		args = append(args, *filter.Assignee)
		argIndex++
	}
	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIndex)
		args = append(args, *filter.DateFrom)
		argIndex++
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIndex)
		args = append(args, *filter.DateTo)
		argIndex++
	}
	if filter.Unassigned {
		query += " AND envelope_id IS NULL"
	} else if filter.EnvelopeID != nil {
		query += fmt.Sprintf(" AND envelope_id = $%d", argIndex)
		args = append(args, *filter.EnvelopeID)
	}

	query += " ORDER BY created_at DESC"

	return query, args
}

// Search retrieves cards whose description or raw input contains the query
// text, case-insensitive, newest first
func (r *CardRepository) Search(ctx context.Context, text string) ([]*models.Card, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cards
		WHERE description ILIKE $1 OR raw_input ILIKE $1
		ORDER BY created_at DESC
	`, cardColumns)
	return r.queryCards(ctx, query, "%"+text+"%")
}

// Update updates all mutable fields of a card
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE cards
		SET card_type = $2, description = $3, date = $4, assignee = $5,
			priority = $6, context_keywords = $7, status = $8, envelope_id = $9,
			updated_at = $10
		WHERE id = $1
		RETURNING updated_at
	`

	keywordsJSON, err := json.Marshal(card.ContextKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal context keywords: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		card.ID,
		card.CardType,
		card.Description,
		card.Date,
		card.Assignee,
		card.Priority,
		keywordsJSON,
		card.Status,
		card.EnvelopeID,
		time.Now(),
	).Scan(&card.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("card %s: %w", card.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	return nil
}

// MarkCompleted transitions a card to completed status
func (r *CardRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cards SET status = $2, updated_at = $3 WHERE id = $1`,
		id, models.CardStatusCompleted, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check completed rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}

	return nil
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListOverdue retrieves active tasks dated before now, oldest first
func (r *CardRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Card, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cards
		WHERE card_type = 'task' AND status = 'active' AND date IS NOT NULL AND date < $1
		ORDER BY date ASC
	`, cardColumns)
	return r.queryCards(ctx, query, now)
}

// ListUpcoming retrieves active cards dated within the window starting at now
func (r *CardRepository) ListUpcoming(ctx context.Context, now time.Time, window time.Duration) ([]*models.Card, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cards
		WHERE status = 'active' AND date IS NOT NULL AND date >= $1 AND date <= $2
		ORDER BY date ASC
	`, cardColumns)
	return r.queryCards(ctx, query, now, now.Add(window))
}

func (r *CardRepository) queryCards(ctx context.Context, query string, args ...any) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	card := &models.Card{}
	var keywordsJSON []byte
	var date sql.NullTime
	var envelopeID uuid.NullUUID

	err := row.Scan(
		&card.ID,
		&card.CardType,
		&card.Description,
		&date,
		&card.Assignee,
		&card.Priority,
		&keywordsJSON,
		&card.Status,
		&envelopeID,
		&card.RawInput,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywordsJSON, &card.ContextKeywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context keywords: %w", err)
	}
	if date.Valid {
		card.Date = &date.Time
	}
	if envelopeID.Valid {
		card.EnvelopeID = &envelopeID.UUID
	}

	return card, nil
}
