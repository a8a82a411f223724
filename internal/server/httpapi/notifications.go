package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

func (h *handler) listNotifications(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	status := models.NotificationStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.NotificationPending, models.NotificationSent, models.NotificationFailed:
	default:
		return 0, nil, common.NewValidationError("status", "Invalid status. Must be 'pending', 'sent', or 'failed'.")
	}
	return ok(h.svc.Notifications.ListNotifications(r.Context(), status))
}

func (h *handler) sendReminder(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Notifications.RemindMe(r.Context()))
}

func (h *handler) sendWeeklySummary(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Notifications.SummarizeForMe(r.Context()))
}
