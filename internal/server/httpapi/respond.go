package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/logging"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// errInvalidBody is reported when a request body is not the expected JSON.
var errInvalidBody = common.NewValidationError("body", "Invalid request body.")

func writeJSON(w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON runs before the service operation, so a malformed body is
// rejected with 400 without authenticating the caller or spending any of
// the operation's rate limit budget.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// statusFor maps a service error to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	var (
		rl *common.RateLimitError
		ve *common.ValidationError
		ae *common.AccessError
		de *common.DeliveryError
	)
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, common.ErrRefreshTokenExpired.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, common.ErrInvalidToken.Error()
	case errors.As(err, &rl):
		return http.StatusTooManyRequests, rl.Error()
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &ae):
		if errors.Is(ae.Kind, common.ErrNotFound) {
			return http.StatusNotFound, ae.Message
		}
		return http.StatusForbidden, ae.Message
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict, common.ErrEmailTaken.Error()
	case errors.As(err, &de):
		return http.StatusBadGateway, "Failed to send email"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status, msg := statusFor(err)

	var rl *common.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfterSeconds()))
	}

	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorBody{Error: msg})
}
