package errcode

import "errors"

// Lifecycle and store errors. These cross internal layer boundaries only;
// external surfaces collapse authorization failures into a generic outcome.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidTransition  = errors.New("invalid lifecycle transition")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("conflict with existing entity")
)

// Authorization outcomes. Intentionally low-information: expired, revoked and
// unknown tokens are indistinguishable to callers.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")
)

// Credential errors for the login supplement.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordEncryption = errors.New("password encryption error")
)

// Kind maps an application error to its taxonomy name for logging and for
// the embedding transport layer's status mapping.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrPermissionDenied):
		return "denied"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "internal"
	}
}
