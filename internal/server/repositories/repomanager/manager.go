// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkovs/codepad/internal/dbx"
	"github.com/avolkovs/codepad/internal/server/repositories/files"
	"github.com/avolkovs/codepad/internal/server/repositories/users"
)

// RepositoryManager abstracts the concrete storage backend. Services request
// repositories per call, passing either the shared *sql.DB or a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
