package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type idResponse struct {
	ID string `json:"id"`
}

// getPreferences creates the default record on first read.
func (h *handler) getPreferences(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Preferences.Get(r.Context()))
}

func (h *handler) updatePreferences(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var patch models.PreferencesPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return 0, nil, err
	}
	return ok(h.svc.Preferences.Update(r.Context(), patch))
}

func (h *handler) initializePreferences(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := h.svc.Preferences.Initialize(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, idResponse{ID: id}, nil
}

func (h *handler) toggleEmail(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Preferences.ToggleEmailNotifications(r.Context()))
}

func (h *handler) toggleAssistant(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Preferences.ToggleAIAssistant(r.Context()))
}
