package httpapi

import "net/http"

func (h *handler) dashboardSummary(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Dashboard.Summary(r.Context()))
}

func (h *handler) dashboardRecent(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Dashboard.Recent(r.Context()))
}

func (h *handler) dashboardAnalytics(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Dashboard.Analytics(r.Context()))
}

func (h *handler) dashboardLoadSummary(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Dashboard.LoadSummary(r.Context()))
}
