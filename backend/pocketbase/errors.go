package pocketbase

import (
	"errors"
	"fmt"
	"net/http"

	authclient "github.com/HugoQuintal01/pocketbase-login-use-case"
)

// ErrAuthorizationCancelled is returned by an [AuthorizeFunc] when the user
// abandons the provider's consent flow. The adapter maps it to the cancelled
// classification rather than a failure.
var ErrAuthorizationCancelled = errors.New("authorization cancelled")

type fieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError is PocketBase's error envelope. Data keys are the offending
// request fields; their codes are stable identifiers the adapter classifies
// on, never the human-readable messages.
type apiError struct {
	Status  int                   `json:"-"`
	Code    int                   `json:"code"`
	Message string                `json:"message"`
	Data    map[string]fieldError `json:"data"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("pocketbase: %d %s", e.Status, e.Message)
}

func (e *apiError) field(name string) (fieldError, bool) {
	fe, ok := e.Data[name]
	return fe, ok
}

// classify turns a transport-layer failure into the structured code the core
// dispatches on. op names the capability for the error chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		// No HTTP response at all: DNS, dial, TLS, timeout.
		return authclient.NewBackendError(authclient.CodeNetwork, op, err)
	}

	return authclient.NewBackendError(classifyAPI(op, apiErr), op, err)
}

func classifyAPI(op string, e *apiError) authclient.ErrorCode {
	if fe, ok := e.field("email"); ok {
		switch fe.Code {
		case "validation_not_unique":
			return authclient.CodeEmailInUse
		case "validation_is_email", "validation_invalid_email", "validation_required":
			return authclient.CodeInvalidEmail
		}
	}
	if _, ok := e.field("password"); ok {
		return authclient.CodeWeakPassword
	}
	if _, ok := e.field("oldPassword"); ok {
		return authclient.CodeReauthFailed
	}

	switch e.Status {
	case http.StatusBadRequest:
		// auth-with-password rejects bad credentials with a bare 400.
		switch op {
		case opSignIn, opReauthenticate:
			return authclient.CodeInvalidCredential
		}
		return authclient.CodeBackendRejected
	case http.StatusUnauthorized, http.StatusForbidden:
		return authclient.CodeBackendRejected
	case http.StatusNotFound:
		return authclient.CodeUserNotFound
	case http.StatusTooManyRequests:
		return authclient.CodeBackendRejected
	default:
		return authclient.CodeUnknown
	}
}
