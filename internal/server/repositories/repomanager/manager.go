package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcourse/internal/dbx"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/identities"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/secrets"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Secrets(db dbx.DBTX) secrets.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
