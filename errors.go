package accounts

import "github.com/goliatone/go-errors"

const (
	TextCodeValidation        = "accounts_validation_failed"
	TextCodeInvalidCreds      = "accounts_invalid_credentials"
	TextCodeDuplicateIdentity = "accounts_duplicate_identity"
	TextCodeUnavailable       = "accounts_registry_unavailable"
	TextCodeRequestFailed     = "accounts_request_failed"
	TextCodeNotFound          = "accounts_record_not_found"
	TextCodeAuthFailed        = "accounts_authentication_failed"
	TextCodeBusy              = "accounts_operation_in_flight"
)

// ErrValidation is returned when required input is missing or mismatched,
// before any registry I/O happens.
var ErrValidation = errors.New("required fields are missing or do not match", errors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials is returned when no registry holds a record
// matching the submitted account id and password.
var ErrInvalidCredentials = errors.New("account id or password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateIdentity is returned when a create collides on user id or
// email in whichever registry answered.
var ErrDuplicateIdentity = errors.New("user id or email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrRegistryUnavailable means the remote registry produced no response at
// all (connection failure or timeout). It is the only condition that
// triggers the local fallback.
var ErrRegistryUnavailable = errors.New("user registry is unreachable", errors.CategoryOperation).
	WithTextCode(TextCodeUnavailable)

// ErrRequestFailed means the remote registry responded with a failure that
// is neither a credential mismatch nor a conflict. It never triggers the
// local fallback.
var ErrRequestFailed = errors.New("user registry rejected the request", errors.CategoryOperation).
	WithTextCode(TextCodeRequestFailed)

// ErrNotFound is returned when a delete target is absent.
var ErrNotFound = errors.New("user record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrAuthenticationFailed is the catch-all for unexpected failures during
// login or signup.
var ErrAuthenticationFailed = errors.New("authentication failed, please try again", errors.CategoryInternal).
	WithTextCode(TextCodeAuthFailed)

// ErrOperationInFlight rejects overlapping login/signup/delete submissions.
var ErrOperationInFlight = errors.New("another account operation is already in progress", errors.CategoryConflict).
	WithTextCode(TextCodeBusy)

// IsUnavailable reports whether err denotes remote unreachability.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRegistryUnavailable)
}

// IsDuplicateIdentity reports whether err denotes an id/email collision.
func IsDuplicateIdentity(err error) bool {
	return errors.Is(err, ErrDuplicateIdentity)
}

// IsInvalidCredentials reports whether err denotes a credential mismatch.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsNotFound reports whether err denotes an absent delete target.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err was raised before any registry I/O.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// UserMessage resolves err into the string shown to the person at the
// form. Every coordinator error maps here; nothing is silently dropped.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	return ErrAuthenticationFailed.Message
}
