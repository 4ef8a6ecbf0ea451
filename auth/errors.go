package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrCredentialTaken signals a signup against an already registered email.
// The store's unique constraint is the source of truth for this condition.
var ErrCredentialTaken = errors.New("credential taken", errors.CategoryConflict).
	WithCode(errors.CodeForbidden).
	WithTextCode("CREDENTIAL_TAKEN")

// ErrInvalidCredentials covers both an unknown identifier and a password
// mismatch. The two cases are never distinguished outside this package so
// callers cannot enumerate registered emails.
var ErrInvalidCredentials = errors.New("credential incorrect", errors.CategoryAuth).
	WithCode(errors.CodeForbidden).
	WithTextCode("INVALID_CREDENTIALS")

// ErrMismatchedHashAndPassword is the internal mismatch signal from the
// password comparison; it surfaces as ErrInvalidCredentials.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password should not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD")

// ErrTokenExpired is returned for structurally valid tokens past their exp claim
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers bad signatures, wrong algorithms, and garbage input
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrSigningKeyMissing is a configuration error, fatal at startup
var ErrSigningKeyMissing = errors.New("signing key is not configured", errors.CategoryInternal).
	WithTextCode("SIGNING_KEY_MISSING")

// ErrUnableToDecodeSession unable to decode claims from a validated token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("SESSION_DECODE")

// IsConflictError will check for store uniqueness violations
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryConflict
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
