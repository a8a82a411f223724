package common

// AuthorizationHeaderName carries "Bearer <access token>" on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// Field limits shared by validation and the persistence schema.
const (
	MaxTodoTextLength      = 500
	MaxTags                = 10
	MaxTagLength           = 30
	MaxThreadTitleLength   = 200
	MaxMessageLength       = 5000
	MaxMessagesPerThread   = 100
	AgentContextTodoLimit  = 10
	DashboardRecentLimit   = 20
	ReminderEmailTodoLimit = 5
)
