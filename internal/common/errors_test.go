package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitError_RoundsUpToSeconds(t *testing.T) {
	tests := []struct {
		retry time.Duration
		want  int
	}{
		{1500 * time.Millisecond, 2},
		{2 * time.Second, 2},
		{1 * time.Millisecond, 1},
		{0, 0},
	}
	for _, tc := range tests {
		e := NewRateLimitError("createTodo", tc.retry)
		assert.Equal(t, tc.want, e.RetryAfterSeconds())
	}

	e := NewRateLimitError("createTodo", 1200*time.Millisecond)
	assert.Equal(t, "Rate limit exceeded. Please try again in 2 seconds.", e.Error())
}

func TestErrorsMatchSentinels(t *testing.T) {
	assert.True(t, errors.Is(NewValidationError("text", "bad"), ErrInvalidInput))
	assert.True(t, errors.Is(NewRateLimitError("x", time.Second), ErrRateLimited))
	assert.True(t, errors.Is(NotFoundError("Todo"), ErrNotFound))
	assert.False(t, errors.Is(NotFoundError("Todo"), ErrNotAuthorized))
	assert.True(t, errors.Is(NotAuthorizedError("update", "todo"), ErrNotAuthorized))

	wrapped := fmt.Errorf("service: %w", NewValidationError("text", "bad"))
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "text", ve.Field)
}

func TestDeliveryError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("smtp down")
	err := &DeliveryError{NotificationID: "n1", Cause: cause}

	assert.True(t, errors.Is(err, ErrDeliveryFailure))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "email delivery failed: smtp down", err.Error())
}

func TestAccessError_Messages(t *testing.T) {
	assert.Equal(t, "Todo not found", NotFoundError("Todo").Error())
	assert.Equal(t, "Not authorized to delete this thread", NotAuthorizedError("delete", "thread").Error())
}
