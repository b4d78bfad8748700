package authclient

import (
	"context"

	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// Identity is the durable account record owned by the backend.
type Identity = session.Identity

// Session is the client's current view of which identity, if any, is
// authenticated. A nil Identity means anonymous.
type Session = session.Session

// Credentials is a transient email/password pair held only for the duration
// of a submission. Never persisted, never logged.
type Credentials struct {
	Email    string
	Password string
}

// RegistrationRequest carries the sign-up form. Password and ConfirmPassword
// must match before the backend is called; DisplayName is optional.
type RegistrationRequest struct {
	Credentials
	ConfirmPassword string
	DisplayName     string
}

// ResetRequest asks the backend to dispatch a password-reset email. It is
// fire-and-forget: no resulting entity, only the side effect.
type ResetRequest struct {
	Email string
}

// Backend is the capability surface every identity backend must provide.
// The core depends only on this interface; transport and storage are the
// implementation's business.
//
// All network-crossing methods must honor ctx and must not block
// indefinitely — transport timeouts are the adapter's responsibility and
// surface as [CodeNetwork]. Failures are returned as [*BackendError].
//
// The Session return values of SignIn, Register, and SocialSignIn exist for
// direct callers; the core ignores them and trusts ObserveSession instead,
// so the store can never diverge from what the backend considers current.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, req RegistrationRequest) (Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SocialSignIn(ctx context.Context, providerID string) (Session, error)
	Reauthenticate(ctx context.Context, current Session, password string) error
	UpdatePassword(ctx context.Context, current Session, newPassword string) error
	DeleteAccount(ctx context.Context, current Session) error
	SignOut(ctx context.Context) error

	// session.Source: ObserveSession invokes the callback immediately with
	// the currently known session, then on every subsequent change. The
	// session store subscribes exactly once and releases exactly once.
	session.Source
}
