package workspace

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListIntegrations(ctx context.Context, userID string) ([]models.Integration, error) {
	query := `
		SELECT id, provider, connected_at
		FROM integrations
		WHERE user_id = $1
		ORDER BY provider
	`
	return queryAll(ctx, r.db, query, userID, func(rows *sql.Rows) (models.Integration, error) {
		var i models.Integration
		var at sql.NullTime
		if err := rows.Scan(&i.ID, &i.Provider, &at); err != nil {
			return i, err
		}
		if at.Valid {
			t := at.Time
			i.ConnectedAt = &t
			i.Connected = true
		}
		return i, nil
	})
}

func (r *PostgresRepository) ListAutomations(ctx context.Context, userID string) ([]models.Automation, error) {
	query := `
		SELECT id, name, trigger_event, action, enabled
		FROM automations
		WHERE user_id = $1
		ORDER BY name
	`
	return queryAll(ctx, r.db, query, userID, func(rows *sql.Rows) (models.Automation, error) {
		var a models.Automation
		err := rows.Scan(&a.ID, &a.Name, &a.Trigger, &a.Action, &a.Enabled)
		return a, err
	})
}

func queryAll[T any](ctx context.Context, db dbx.DBTX, query string, userID string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
