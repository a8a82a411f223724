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

// MemoryRepositoryManager hands out the same process-local repositories on
// every call. Data is lost on restart.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	todos         *todos.MemoryRepository
	threads       *threads.MemoryRepository
	messages      *messages.MemoryRepository
	notifications *notifications.MemoryRepository
	preferences   *preferences.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		todos:         todos.NewMemoryRepository(),
		threads:       threads.NewMemoryRepository(),
		messages:      messages.NewMemoryRepository(),
		notifications: notifications.NewMemoryRepository(),
		preferences:   preferences.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Todos(dbx.DBTX) todos.Repository { return m.todos }

func (m *MemoryRepositoryManager) Threads(dbx.DBTX) threads.Repository { return m.threads }

func (m *MemoryRepositoryManager) Messages(dbx.DBTX) messages.Repository { return m.messages }

func (m *MemoryRepositoryManager) Notifications(dbx.DBTX) notifications.Repository {
	return m.notifications
}

func (m *MemoryRepositoryManager) Preferences(dbx.DBTX) preferences.Repository {
	return m.preferences
}
