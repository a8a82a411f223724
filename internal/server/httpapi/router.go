// Package httpapi exposes the services as a JSON API over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/focustodo/internal/logging"
	"github.com/dmitrijs2005/focustodo/internal/server/metrics"
	"github.com/dmitrijs2005/focustodo/internal/server/services"
)

// Services are the handlers' backends.
type Services struct {
	Accounts      *services.AccountService
	Todos         *services.TodoService
	Dashboard     *services.DashboardService
	Agent         *services.AgentService
	Preferences   *services.PreferencesService
	Notifications *services.NotificationService
	Export        *services.ExportService
}

// ReadinessCheck reports whether the server can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type handler struct {
	svc    Services
	logger logging.Logger
}

// endpoint returns a status and a JSON body, or an error mapped by writeError.
type endpoint func(w http.ResponseWriter, r *http.Request) (int, any, error)

func (h *handler) wrap(fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body, err := fn(w, r)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, status, body)
	}
}

// NewRouter wires every route. /auth/session, /auth/sign-out-all and
// everything under /api require a bearer access token.
func NewRouter(svc Services, m *metrics.Metrics, logger logging.Logger, ready ReadinessCheck) *mux.Router {
	h := &handler{svc: svc, logger: logger.With("module", "http")}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(h.logger), metricsMiddleware(m))

	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz(ready)).Methods(http.MethodGet)

	requireAuth := authMiddleware(svc.Accounts, h.logger)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/sign-up", h.wrap(h.signUp)).Methods(http.MethodPost)
	a.HandleFunc("/sign-in", h.wrap(h.signIn)).Methods(http.MethodPost)
	a.HandleFunc("/refresh", h.wrap(h.refresh)).Methods(http.MethodPost)
	a.HandleFunc("/sign-out", h.wrap(h.signOut)).Methods(http.MethodPost)
	a.Handle("/session", requireAuth(h.wrap(h.session))).Methods(http.MethodGet)
	a.Handle("/sign-out-all", requireAuth(h.wrap(h.signOutAll))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireAuth)

	api.HandleFunc("/todos", h.wrap(h.listTodos)).Methods(http.MethodGet)
	api.HandleFunc("/todos", h.wrap(h.createTodo)).Methods(http.MethodPost)
	api.HandleFunc("/todos", h.wrap(h.clearCompleted)).Methods(http.MethodDelete)
	api.HandleFunc("/todos/stats", h.wrap(h.todoStats)).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id}/text", h.wrap(h.updateTodoText)).Methods(http.MethodPatch)
	api.HandleFunc("/todos/{id}/priority", h.wrap(h.updateTodoPriority)).Methods(http.MethodPatch)
	api.HandleFunc("/todos/{id}/due-date", h.wrap(h.updateTodoDueDate)).Methods(http.MethodPatch)
	api.HandleFunc("/todos/{id}/tags", h.wrap(h.updateTodoTags)).Methods(http.MethodPatch)
	api.HandleFunc("/todos/{id}/toggle", h.wrap(h.toggleTodo)).Methods(http.MethodPost)
	api.HandleFunc("/todos/{id}", h.wrap(h.removeTodo)).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard/summary", h.wrap(h.dashboardSummary)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/recent", h.wrap(h.dashboardRecent)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/analytics", h.wrap(h.dashboardAnalytics)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/load-summary", h.wrap(h.dashboardLoadSummary)).Methods(http.MethodGet)

	api.HandleFunc("/threads", h.wrap(h.listThreads)).Methods(http.MethodGet)
	api.HandleFunc("/threads", h.wrap(h.createThread)).Methods(http.MethodPost)
	api.HandleFunc("/threads/{id}", h.wrap(h.renameThread)).Methods(http.MethodPatch)
	api.HandleFunc("/threads/{id}", h.wrap(h.deleteThread)).Methods(http.MethodDelete)
	api.HandleFunc("/threads/{id}/messages", h.wrap(h.getMessages)).Methods(http.MethodGet)
	api.HandleFunc("/threads/{id}/messages", h.wrap(h.sendMessage)).Methods(http.MethodPost)
	api.HandleFunc("/threads/{id}/archive", h.wrap(h.archiveThread)).Methods(http.MethodPost)
	api.HandleFunc("/threads/{id}/unarchive", h.wrap(h.unarchiveThread)).Methods(http.MethodPost)

	api.HandleFunc("/preferences", h.wrap(h.getPreferences)).Methods(http.MethodGet)
	api.HandleFunc("/preferences", h.wrap(h.updatePreferences)).Methods(http.MethodPatch)
	api.HandleFunc("/preferences/initialize", h.wrap(h.initializePreferences)).Methods(http.MethodPost)
	api.HandleFunc("/preferences/toggle-email", h.wrap(h.toggleEmail)).Methods(http.MethodPost)
	api.HandleFunc("/preferences/toggle-assistant", h.wrap(h.toggleAssistant)).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.wrap(h.listNotifications)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/reminder", h.wrap(h.sendReminder)).Methods(http.MethodPost)
	api.HandleFunc("/notifications/weekly-summary", h.wrap(h.sendWeeklySummary)).Methods(http.MethodPost)

	api.HandleFunc("/export", h.wrap(h.export)).Methods(http.MethodPost)

	return r
}

func healthz(ready ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
