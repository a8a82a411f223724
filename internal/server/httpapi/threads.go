package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type titleRequest struct {
	Title string `json:"title"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handler) listThreads(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	status := models.ThreadStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.ThreadActive, models.ThreadArchived:
	default:
		return 0, nil, common.NewValidationError("status", "Invalid status. Must be 'active' or 'archived'.")
	}
	return ok(h.svc.Agent.ListThreads(r.Context(), status))
}

func (h *handler) createThread(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req titleRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			return 0, nil, err
		}
	}
	thread, err := h.svc.Agent.CreateThread(r.Context(), req.Title)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, thread, nil
}

func (h *handler) renameThread(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Agent.RenameThread(r.Context(), mux.Vars(r)["id"], req.Title))
}

func (h *handler) deleteThread(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	n, err := h.svc.Agent.DeleteThread(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, deletedResponse{Deleted: n}, nil
}

func (h *handler) archiveThread(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Agent.ArchiveThread(r.Context(), mux.Vars(r)["id"]))
}

func (h *handler) unarchiveThread(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Agent.UnarchiveThread(r.Context(), mux.Vars(r)["id"]))
}

func (h *handler) getMessages(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Agent.GetMessages(r.Context(), mux.Vars(r)["id"]))
}

func (h *handler) sendMessage(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	reply, err := h.svc.Agent.SendMessage(r.Context(), mux.Vars(r)["id"], req.Content)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, messageResponse{Message: reply}, nil
}
