// Package common defines shared constants and the error taxonomy used across
// the repositories, services and transport layers. Callers should match the
// sentinels with errors.Is and extract details with errors.As.
package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/timex"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDeliveryFailure = errors.New("delivery failure")
	ErrInternal        = errors.New("internal error")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// ValidationError reports a rejected input field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RateLimitError carries the limiter's retry hint. It matches ErrRateLimited.
type RateLimitError struct {
	Operation  string
	RetryAfter time.Duration
}

func NewRateLimitError(operation string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Operation: operation, RetryAfter: retryAfter}
}

// RetryAfterSeconds rounds the retry hint up to whole seconds.
func (e *RateLimitError) RetryAfterSeconds() int {
	return timex.CeilSeconds(e.RetryAfter)
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", e.RetryAfterSeconds())
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// AccessError is returned when a record exists but belongs to another user,
// or when a referenced record is absent. Kind is ErrNotFound or ErrNotAuthorized.
type AccessError struct {
	Kind    error
	Message string
}

func NotFoundError(entity string) *AccessError {
	return &AccessError{Kind: ErrNotFound, Message: entity + " not found"}
}

func NotAuthorizedError(action, entity string) *AccessError {
	return &AccessError{Kind: ErrNotAuthorized, Message: fmt.Sprintf("Not authorized to %s this %s", action, entity)}
}

func (e *AccessError) Error() string {
	return e.Message
}

func (e *AccessError) Unwrap() error {
	return e.Kind
}

// DeliveryError wraps a failure of the email collaborator.
type DeliveryError struct {
	NotificationID string
	Cause          error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery failed: %v", e.Cause)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDeliveryFailure, e.Cause}
}
