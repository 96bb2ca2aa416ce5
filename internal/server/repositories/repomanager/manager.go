// Package repomanager vends repositories bound to a connection or a
// transaction, and migrates the schema they need.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/paperswipe/internal/dbx"
	"github.com/dmitrijs2005/paperswipe/internal/server/repositories/papers"
	"github.com/dmitrijs2005/paperswipe/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/paperswipe/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Papers(db dbx.DBTX) papers.Repository
}
