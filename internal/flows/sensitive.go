package flows

import (
	"context"

	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// SensitiveMetrics carries metric IDs shared by the guarded operations.
type SensitiveMetrics struct {
	ReauthFailure int
	Success       int
	Failure       int
}

// SensitiveErrors carries host-level sentinel errors for the guarded
// operations.
type SensitiveErrors struct {
	NotReady     error
	ReauthFailed error
	WeakPassword error
}

// SensitiveDeps captures dependencies shared by password change and account
// deletion. Both operations are gated on a fresh reauthentication; the
// mutation never runs when the gate fails.
type SensitiveDeps struct {
	Current          func() session.Session
	Reauthenticate   func(ctx context.Context, current session.Session, password string) error
	ValidatePassword func(string) error
	MapBackendError  func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, eventType string, success bool, email string, cause error, meta func() map[string]string)

	Metrics SensitiveMetrics
	Event   string
	Errors  SensitiveErrors
}

// RunChangePassword reauthenticates with the current password and then asks
// the backend to replace it. The new password passes the same local policy
// as registration before any backend call.
func RunChangePassword(ctx context.Context, currentPassword, newPassword string, update func(ctx context.Context, current session.Session, newPassword string) error, deps SensitiveDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Current == nil || deps.Reauthenticate == nil || deps.ValidatePassword == nil || deps.MapBackendError == nil || update == nil {
		return deps.Errors.NotReady
	}

	if policyErr := deps.ValidatePassword(newPassword); policyErr != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Event, false, "", policyErr, func() map[string]string {
			return map[string]string{"reason": "weak_password"}
		})
		return deps.Errors.WeakPassword
	}

	current, email, err := reauthenticate(ctx, currentPassword, deps)
	if err != nil {
		return err
	}

	if err := update(ctx, current, newPassword); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Event, false, email, err, nil)
		return deps.MapBackendError(err)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Event, true, email, nil, nil)
	return nil
}

// RunDeleteAccount reauthenticates and then asks the backend to remove the
// account. Local session state is not touched here: the backend reports the
// resulting anonymous session through its change notification like any other
// transition.
func RunDeleteAccount(ctx context.Context, currentPassword string, remove func(ctx context.Context, current session.Session) error, deps SensitiveDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Current == nil || deps.Reauthenticate == nil || deps.MapBackendError == nil || remove == nil {
		return deps.Errors.NotReady
	}

	current, email, err := reauthenticate(ctx, currentPassword, deps)
	if err != nil {
		return err
	}

	if err := remove(ctx, current); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Event, false, email, err, nil)
		return deps.MapBackendError(err)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Event, true, email, nil, nil)
	return nil
}

// reauthenticate runs the shared guard step. Any failure, including the
// absence of a signed-in session, collapses to the reauthentication sentinel.
func reauthenticate(ctx context.Context, currentPassword string, deps SensitiveDeps) (session.Session, string, error) {
	current := deps.Current()
	if !current.Authenticated() {
		deps.MetricInc(deps.Metrics.ReauthFailure)
		deps.EmitAudit(ctx, deps.Event, false, "", deps.Errors.ReauthFailed, func() map[string]string {
			return map[string]string{"reason": "no_session"}
		})
		return session.Session{}, "", deps.Errors.ReauthFailed
	}

	email := current.Identity.Email
	if err := deps.Reauthenticate(ctx, current, currentPassword); err != nil {
		deps.MetricInc(deps.Metrics.ReauthFailure)
		deps.EmitAudit(ctx, deps.Event, false, email, err, func() map[string]string {
			return map[string]string{"reason": "reauth_failed"}
		})
		return session.Session{}, "", deps.Errors.ReauthFailed
	}

	return current, email, nil
}
