// Package storage opens the client's local SQLite cache and wires its
// repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/client/migrations"
	"github.com/dmitrijs2005/minutes/internal/client/repositories/meetings"
	"github.com/dmitrijs2005/minutes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/minutes/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata metadata.Repository
	Meetings meetings.Repository
	db       *sql.DB
}

func (r *Repositories) Close() error {
	return r.db.Close()
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens (or creates) the SQLite database at dsn and brings its
// schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Meetings: meetings.NewSQLiteRepository(db),
		db:       db,
	}, nil
}
