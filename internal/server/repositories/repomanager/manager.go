package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/upscaler/internal/dbx"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/processed"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/sessions"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against a *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Sessions(db dbx.DBTX) sessions.Repository
	Processed(db dbx.DBTX) processed.Repository
}
