package authclient

import "errors"

// The closed error taxonomy surfaced to the presentation layer. Every
// operation on [Client] and [Controller] fails with one of these values (or
// nil); raw backend errors never escape the adapter boundary. Unrecognized
// backend failures degrade to [ErrGeneric].
var (
	// ErrEmailInUse reports a registration attempt with an email address that
	// already belongs to an account.
	ErrEmailInUse = errors.New("email address already in use")
	// ErrInvalidCredential reports a sign-in attempt with a wrong password.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrUserNotFound reports an operation against an email address with no
	// matching account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidEmail reports a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrPasswordMismatch reports a registration where password and
	// confirmation differ. Caught locally; the backend is never called.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWeakPassword reports a password that fails the strength policy.
	// Caught locally on submission; also returned when the backend itself
	// rejects a password as too weak.
	ErrWeakPassword = errors.New("password does not meet strength policy")
	// ErrReauthFailed reports a failed reauthentication before a sensitive
	// operation. The guarded mutation is never attempted.
	ErrReauthFailed = errors.New("reauthentication failed")
	// ErrPopupCancelled reports a social sign-in abandoned by the user.
	// Non-alarming: the user changed their mind, nothing went wrong.
	ErrPopupCancelled = errors.New("sign-in cancelled")
	// ErrResetFailed reports a password-reset request that did not go through.
	ErrResetFailed = errors.New("password reset request failed")
	// ErrNetwork reports a transport failure or timeout reaching the backend.
	ErrNetwork = errors.New("network failure")
	// ErrGeneric is the fallback for backend failures outside the taxonomy.
	ErrGeneric = errors.New("authentication failed")

	// ErrSubmissionPending rejects a submission while another one is
	// outstanding on the same controller. Not part of the user-facing
	// taxonomy; presentation layers may drop it silently.
	ErrSubmissionPending = errors.New("submission already in progress")

	// ErrBackendRequired is returned by [Builder.Build] when no backend was
	// configured.
	ErrBackendRequired = errors.New("backend required")
)
