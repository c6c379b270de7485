package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, c *models.Code) error {
	query := `
		INSERT INTO auth_codes (user_id, purpose, code_hash, expires_at, attempts)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (user_id, purpose)
		DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at, attempts = 0
	`
	if _, err := r.db.ExecContext(ctx, query, c.UserID, string(c.Purpose), c.CodeHash, c.Expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID string, purpose models.CodePurpose) (*models.Code, error) {
	query := `
		SELECT code_hash, expires_at, attempts
		FROM auth_codes
		WHERE user_id = $1 AND purpose = $2
	`
	c := &models.Code{UserID: userID, Purpose: purpose}
	if err := r.db.QueryRowContext(ctx, query, userID, string(purpose)).Scan(&c.CodeHash, &c.Expires, &c.Attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, userID string, purpose models.CodePurpose) (int, error) {
	query := `
		UPDATE auth_codes SET attempts = attempts + 1
		WHERE user_id = $1 AND purpose = $2
		RETURNING attempts
	`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, userID, string(purpose)).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, purpose models.CodePurpose) error {
	query := `
		DELETE FROM auth_codes
		WHERE user_id = $1 AND purpose = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
