// Package apperr defines the error kinds the service layer reports and
// their mapping to HTTP status codes. Centralizing the mapping keeps the
// handlers free of switch statements over domain errors.
package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by stores and services. Handlers translate
// them via HTTPStatus; services may wrap them with %w for context.
var (
	// ErrValidation covers missing or malformed input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers absent entities (user, recipe, comment, reply,
	// subscription, ban list entry).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller presented no usable identity.
	ErrUnauthorized = errors.New("not authorized")

	// ErrForbidden means the caller is identified but lacks permission.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict covers duplicates: an email already registered, an
	// already-banned address, an existing subscription.
	ErrConflict = errors.New("already exists")

	// ErrEmailBanned blocks registration and login for banned addresses.
	ErrEmailBanned = errors.New("email is banned")

	// ErrCodeInvalid is returned for a missing, mismatched or expired
	// confirmation code. Callers are deliberately not told which.
	ErrCodeInvalid = errors.New("invalid or expired code")

	// ErrInvalidCredentials is returned on login when the user is absent
	// or the password does not match, without distinguishing the two.
	ErrInvalidCredentials = errors.New("incorrect password or login")

	// ErrExternalService covers mail or storage failures that must be
	// surfaced (e.g. the confirmation email could not be sent).
	ErrExternalService = errors.New("external service failure")
)

// HTTPStatus maps a domain error to the HTTP status code the API layer
// should respond with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrCodeInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrEmailBanned):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
