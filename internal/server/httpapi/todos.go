package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/services"
)

type createTodoRequest struct {
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority,omitempty"`
	DueDate  *time.Time      `json:"dueDate,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type priorityRequest struct {
	Priority models.Priority `json:"priority"`
}

type dueDateRequest struct {
	DueDate *time.Time `json:"dueDate"`
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

func (h *handler) listTodos(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	var (
		list []*models.Todo
		err  error
	)
	switch models.View(r.URL.Query().Get("filter")) {
	case "", models.ViewAll:
		list, err = h.svc.Todos.List(r.Context())
	case models.ViewActive:
		list, err = h.svc.Todos.ListActive(r.Context())
	case models.ViewCompleted:
		list, err = h.svc.Todos.ListCompleted(r.Context())
	default:
		return 0, nil, common.NewValidationError("filter", "Invalid filter. Must be 'all', 'active', or 'completed'.")
	}
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, list, nil
}

func (h *handler) todoStats(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	stats, err := h.svc.Todos.Stats(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, stats, nil
}

func (h *handler) createTodo(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	todo, err := h.svc.Todos.Create(r.Context(), services.NewTodo{
		Text:     req.Text,
		Priority: req.Priority,
		DueDate:  req.DueDate,
		Tags:     req.Tags,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, todo, nil
}

func (h *handler) updateTodoText(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Todos.UpdateText(r.Context(), mux.Vars(r)["id"], req.Text))
}

func (h *handler) updateTodoPriority(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req priorityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Todos.UpdatePriority(r.Context(), mux.Vars(r)["id"], req.Priority))
}

func (h *handler) updateTodoDueDate(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req dueDateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Todos.UpdateDueDate(r.Context(), mux.Vars(r)["id"], req.DueDate))
}

func (h *handler) updateTodoTags(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req tagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Todos.UpdateTags(r.Context(), mux.Vars(r)["id"], req.Tags))
}

func (h *handler) toggleTodo(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Todos.Toggle(r.Context(), mux.Vars(r)["id"]))
}

func (h *handler) removeTodo(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	if err := h.svc.Todos.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}

// clearCompleted only runs with ?completed=true so that a bare DELETE on
// the collection cannot wipe anything by accident.
func (h *handler) clearCompleted(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	if r.URL.Query().Get("completed") != "true" {
		return 0, nil, common.NewValidationError("completed", "Only completed todos can be cleared. Pass completed=true.")
	}
	n, err := h.svc.Todos.ClearCompleted(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, deletedResponse{Deleted: n}, nil
}

// ok turns a (value, error) service result into a 200 response.
func ok[T any](v T, err error) (int, any, error) {
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, v, nil
}
