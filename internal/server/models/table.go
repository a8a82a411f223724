package models

// Table names an owner-scoped entity table.
type Table string

const (
	TableTodos         Table = "todos"
	TableThreads       Table = "threads"
	TableMessages      Table = "messages"
	TableNotifications Table = "email_notifications"
	TablePreferences   Table = "user_preferences"
)

// OwnedTables lists every table whose rows carry a user_id.
var OwnedTables = []Table{
	TableTodos,
	TableThreads,
	TableMessages,
	TableNotifications,
	TablePreferences,
}
