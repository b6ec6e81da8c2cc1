package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardfile/cardfile/internal/models"
)

// ContextRepository handles user context database operations
type ContextRepository struct {
	db *DB
}

// NewContextRepository creates a new context repository
func NewContextRepository(db *DB) *ContextRepository {
	return &ContextRepository{db: db}
}

const contextColumns = `id, context_type, name, description, keywords, importance_score, created_at, updated_at, last_referenced`

// Create inserts a new context entry
func (r *ContextRepository) Create(ctx context.Context, uc *models.UserContext) error {
	query := `
		INSERT INTO user_contexts (id, context_type, name, description, keywords, importance_score, created_at, updated_at, last_referenced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	keywordsJSON, err := json.Marshal(uc.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	now := time.Now()
	if uc.LastReferenced.IsZero() {
		uc.LastReferenced = now
	}
	err = r.db.QueryRowContext(ctx, query,
		uc.ID,
		uc.ContextType,
		uc.Name,
		uc.Description,
		keywordsJSON,
		uc.ImportanceScore,
		now,
		now,
		uc.LastReferenced,
	).Scan(&uc.CreatedAt, &uc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user context: %w", err)
	}

	return nil
}

// Update updates a context entry's mutable fields
func (r *ContextRepository) Update(ctx context.Context, uc *models.UserContext) error {
	query := `
		UPDATE user_contexts
		SET description = $2, keywords = $3, importance_score = $4, last_referenced = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	keywordsJSON, err := json.Marshal(uc.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		uc.ID,
		uc.Description,
		keywordsJSON,
		uc.ImportanceScore,
		uc.LastReferenced,
		time.Now(),
	).Scan(&uc.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("user context %s: %w", uc.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update user context: %w", err)
	}

	return nil
}

// GetByTypeAndName retrieves a context entry by its type and exact name
func (r *ContextRepository) GetByTypeAndName(ctx context.Context, contextType models.ContextType, name string) (*models.UserContext, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_contexts WHERE context_type = $1 AND name = $2`, contextColumns)
	uc, err := scanContext(r.db.QueryRowContext(ctx, query, contextType, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user context %s/%s: %w", contextType, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user context: %w", err)
	}
	return uc, nil
}

// FindThemesMatching retrieves theme contexts whose name contains the
// keyword, case-insensitive
func (r *ContextRepository) FindThemesMatching(ctx context.Context, keyword string) ([]*models.UserContext, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_contexts
		WHERE context_type = 'theme' AND name ILIKE $1
		ORDER BY importance_score DESC
	`, contextColumns)
	return r.queryContexts(ctx, query, "%"+keyword+"%")
}

// ListWithKeyword retrieves contexts whose keyword set contains the keyword
func (r *ContextRepository) ListWithKeyword(ctx context.Context, keyword string) ([]*models.UserContext, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_contexts
		WHERE keywords @> to_jsonb($1::text)
		ORDER BY importance_score DESC
	`, contextColumns)
	return r.queryContexts(ctx, query, keyword)
}

// List retrieves all context entries, most important first
func (r *ContextRepository) List(ctx context.Context) ([]*models.UserContext, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_contexts
		ORDER BY context_type ASC, importance_score DESC, name ASC
	`, contextColumns)
	return r.queryContexts(ctx, query)
}

// PurgeStale deletes entries last referenced before the cutoff and below
// the importance threshold, returning how many rows were removed
func (r *ContextRepository) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_contexts WHERE last_referenced < $1 AND importance_score < $2`,
		now.Add(-models.ContextRetention), models.StaleImportanceThreshold,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale contexts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check purged rows: %w", err)
	}

	return rows, nil
}

func (r *ContextRepository) queryContexts(ctx context.Context, query string, args ...any) ([]*models.UserContext, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*models.UserContext
	for rows.Next() {
		uc, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user context: %w", err)
		}
		contexts = append(contexts, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user contexts: %w", err)
	}

	return contexts, nil
}

func scanContext(row rowScanner) (*models.UserContext, error) {
	uc := &models.UserContext{}
	var keywordsJSON []byte

	err := row.Scan(
		&uc.ID,
		&uc.ContextType,
		&uc.Name,
		&uc.Description,
		&keywordsJSON,
		&uc.ImportanceScore,
		&uc.CreatedAt,
		&uc.UpdatedAt,
		&uc.LastReferenced,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywordsJSON, &uc.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}

	return uc, nil
}
