package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/codes"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/meetings"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/users"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/workspace"
)

// RepositoryManager vends repositories bound to a *sql.DB or a *sql.Tx, so
// services can compose several of them inside one dbx.WithTx call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Codes(db dbx.DBTX) codes.Repository
	Meetings(db dbx.DBTX) meetings.Repository
	Workspace(db dbx.DBTX) workspace.Repository
}
