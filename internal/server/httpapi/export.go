package httpapi

import "net/http"

func (h *handler) export(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return ok(h.svc.Export.Export(r.Context()))
}
