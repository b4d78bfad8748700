package authclient

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a backend failure at the adapter boundary. Adapters
// interpret their backend's native failure shape (HTTP status, field error
// identifiers, driver errors) exactly once and return a [BackendError]
// carrying one of these codes; the rest of the core dispatches on the code
// and never on message text.
type ErrorCode uint8

const (
	// CodeUnknown marks a failure the adapter could not classify. It maps to
	// the generic user-facing fallback.
	CodeUnknown ErrorCode = iota
	// CodeEmailInUse marks a registration rejected for a duplicate email.
	CodeEmailInUse
	// CodeInvalidCredential marks a sign-in rejected for a wrong password.
	CodeInvalidCredential
	// CodeUserNotFound marks an operation against a nonexistent account.
	CodeUserNotFound
	// CodeInvalidEmail marks a malformed email address.
	CodeInvalidEmail
	// CodeWeakPassword marks a password the backend itself rejected as weak.
	CodeWeakPassword
	// CodePopupCancelled marks a social sign-in the user abandoned.
	CodePopupCancelled
	// CodeReauthFailed marks a failed reauthentication round-trip.
	CodeReauthFailed
	// CodeBackendRejected marks a mutation the backend refused for a reason
	// outside the taxonomy (unsupported capability, stale record, policy).
	CodeBackendRejected
	// CodeNetwork marks a transport failure or timeout.
	CodeNetwork
)

// String returns a stable identifier for logging and audit metadata.
func (c ErrorCode) String() string {
	switch c {
	case CodeEmailInUse:
		return "email_in_use"
	case CodeInvalidCredential:
		return "invalid_credential"
	case CodeUserNotFound:
		return "user_not_found"
	case CodeInvalidEmail:
		return "invalid_email"
	case CodeWeakPassword:
		return "weak_password"
	case CodePopupCancelled:
		return "popup_cancelled"
	case CodeReauthFailed:
		return "reauth_failed"
	case CodeBackendRejected:
		return "backend_rejected"
	case CodeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// BackendError is the structured failure every [Backend] implementation
// returns. Op names the capability that failed ("sign_in", "register", ...);
// Err retains the backend's native error for the audit channel.
type BackendError struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError builds a [BackendError]; adapters use it at every failure
// exit.
func NewBackendError(code ErrorCode, op string, err error) *BackendError {
	return &BackendError{Code: code, Op: op, Err: err}
}

// CodeOf extracts the [ErrorCode] from err, or [CodeUnknown] when err does
// not carry a [BackendError].
func CodeOf(err error) ErrorCode {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUnknown
}
