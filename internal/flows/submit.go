package flows

import (
	"context"
	"time"
)

// SubmitMetrics carries metric IDs needed by the credential submit flow.
type SubmitMetrics struct {
	Success            int
	Failure            int
	ValidationRejected int
}

// SubmitEvents carries audit event names used by the credential submit flow.
type SubmitEvents struct {
	SignIn   string
	Register string
}

// SubmitErrors carries host-level sentinel errors used by the credential
// submit flow.
type SubmitErrors struct {
	NotReady         error
	PasswordMismatch error
	WeakPassword     error
}

// SubmitDeps captures sign-in/registration dependencies.
type SubmitDeps struct {
	Registering bool

	ValidatePassword func(string) error
	SignIn           func(ctx context.Context, email, password string) error
	Register         func(ctx context.Context, email, password, displayName string) error
	MapBackendError  func(error) error

	Now       func() time.Time
	MetricInc func(int)
	Observe   func(time.Duration)
	EmitAudit func(ctx context.Context, eventType string, success bool, email string, cause error, meta func() map[string]string)

	Metrics SubmitMetrics
	Events  SubmitEvents
	Errors  SubmitErrors
}

// RunSubmit executes one credential submission: local validation first, then
// exactly one backend call. On success it does NOT touch session state — the
// store observes the backend's own change notification.
func RunSubmit(ctx context.Context, email, password, confirmPassword, displayName string, deps SubmitDeps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Observe == nil {
		deps.Observe = func(time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.ValidatePassword == nil || deps.SignIn == nil || deps.Register == nil || deps.MapBackendError == nil {
		return deps.Errors.NotReady
	}

	event := deps.Events.SignIn
	if deps.Registering {
		event = deps.Events.Register
	}

	// Mismatch is checked before strength so the user fixes the cheap
	// mistake first; neither check reaches the backend.
	if deps.Registering && password != confirmPassword {
		deps.MetricInc(deps.Metrics.ValidationRejected)
		deps.EmitAudit(ctx, event, false, email, deps.Errors.PasswordMismatch, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return deps.Errors.PasswordMismatch
	}

	if policyErr := deps.ValidatePassword(password); policyErr != nil {
		deps.MetricInc(deps.Metrics.ValidationRejected)
		deps.EmitAudit(ctx, event, false, email, policyErr, func() map[string]string {
			return map[string]string{"reason": "weak_password"}
		})
		return deps.Errors.WeakPassword
	}

	start := deps.Now()
	var err error
	if deps.Registering {
		err = deps.Register(ctx, email, password, displayName)
	} else {
		err = deps.SignIn(ctx, email, password)
	}
	deps.Observe(deps.Now().Sub(start))

	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, event, false, email, err, nil)
		return deps.MapBackendError(err)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, event, true, email, nil, nil)
	return nil
}
