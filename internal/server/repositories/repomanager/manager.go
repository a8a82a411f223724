// Package repomanager vends the per-entity repositories for one storage
// backend and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/messages"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/preferences"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/threads"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/todos"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/users"
)

// RepositoryManager returns repositories bound to db. The db argument may
// be a *sql.DB or a *sql.Tx; in-memory managers ignore it.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Todos(db dbx.DBTX) todos.Repository
	Threads(db dbx.DBTX) threads.Repository
	Messages(db dbx.DBTX) messages.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Preferences(db dbx.DBTX) preferences.Repository
}
