package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 500
	KindInternal       ErrKind = "internal"       // 500
	KindUpstream       ErrKind = "upstream"       // 502
	KindUnavailable    ErrKind = "unavailable"    // 503
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Code returns the machine code of err, or "" when err is not a domain error.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Stable codes for outcomes that handlers report as 200 with a message.
const (
	CodeUsernameAlreadyExists    = "username_already_exists"
	CodeSetupTokenInvalid        = "setup_token_invalid"
	CodeCurrentPasswordIncorrect = "current_password_incorrect"
)

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

// ErrMissingFields reports several absent inputs under one client message.
func ErrMissingFields(msg string, fields ...string) *Error {
	meta := map[string]string{}
	for i, f := range fields {
		meta[fmt.Sprintf("field_%d", i)] = f
	}
	return WithMeta(New(KindValidation, "missing_field", msg), meta)
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ----------------------
// Auth errors (401)
// ----------------------

// Single-use setup token is unknown or already redeemed.
func ErrSetupTokenInvalid() *Error {
	return New(KindAuth, CodeSetupTokenInvalid, "Invalid token")
}

func ErrCurrentPasswordIncorrect() *Error {
	return New(KindAuth, CodeCurrentPasswordIncorrect, "Current password is incorrect.")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "User not found")
}

func ErrNoUsers() *Error {
	return New(KindNotFound, "no_users", "No users found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrUsernameAlreadyExists() *Error {
	return New(KindConflict, CodeUsernameAlreadyExists, "User with this username already exists")
}

// A freshly generated secret collided with a stored one; regenerate and retry.
func ErrTokenCollision() *Error {
	return New(KindConflict, "token_collision", "generated token already in use")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "message broker unavailable", cause)
}

// The account row is committed; only the invite delivery failed.
func ErrNotificationFailed(cause error) *Error {
	return Wrap(KindInfrastructure, "notification_failed", "Internal server error", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}

func ErrWorkspaceNotConfigured() *Error {
	return New(KindUnavailable, "workspace_not_configured", "workspace integration is not configured")
}

func ErrWorkspaceRejected(cause error) *Error {
	return Wrap(KindUpstream, "workspace_rejected", "Failed to create task", cause)
}
