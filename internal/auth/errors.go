package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

// Verification and session failures map one-to-one onto HTTP statuses; the
// API responds with the status alone.
var (
	// ErrCodeNotConfirmed means the code is pending but no confirming
	// comment exists yet. The client is expected to re-poll.
	ErrCodeNotConfirmed = errors.New("auth code not yet confirmed by comment", errors.CategoryBadInput).
				WithCode(http.StatusBadRequest).
				WithTextCode("CODE_NOT_CONFIRMED")

	// ErrCodeUnknown covers codes that were never issued, were already
	// consumed, or do not exist. The cases share one error so the response
	// leaks no code-validity information.
	ErrCodeUnknown = errors.New("unknown or consumed auth code", errors.CategoryAuth).
			WithCode(http.StatusUnauthorized).
			WithTextCode("CODE_UNKNOWN")

	// ErrAccountBanned rejects banned external accounts, new or existing.
	ErrAccountBanned = errors.New("account is banned", errors.CategoryAuthz).
				WithCode(http.StatusForbidden).
				WithTextCode("ACCOUNT_BANNED")

	// ErrUserNotFound is returned by session-scoped operations when the
	// claimed user has no record.
	ErrUserNotFound = errors.New("user record not found", errors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode("USER_NOT_FOUND")

	// ErrTokenInvalid covers malformed, mis-signed, and expired tokens.
	ErrTokenInvalid = errors.New("invalid session token", errors.CategoryAuth).
			WithCode(http.StatusUnauthorized).
			WithTextCode("TOKEN_INVALID")

	// ErrMalformedSettings rejects settings payloads that do not decode.
	ErrMalformedSettings = errors.New("malformed settings payload", errors.CategoryBadInput).
				WithCode(http.StatusBadRequest).
				WithTextCode("MALFORMED_SETTINGS")
)

// HTTPStatus extracts the response status for err, defaulting to 500.
func HTTPStatus(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}
