package authclient

import (
	"context"
	"errors"
	"time"

	"github.com/HugoQuintal01/pocketbase-login-use-case/internal/flows"
	"github.com/HugoQuintal01/pocketbase-login-use-case/password"
	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// Audit event types emitted by client operations.
const (
	auditSignIn         = "sign_in"
	auditRegister       = "register"
	auditSocialSignIn   = "social_sign_in"
	auditPasswordReset  = "password_reset"
	auditPasswordChange = "password_change"
	auditAccountDelete  = "account_delete"
	auditSignOut        = "sign_out"
	auditSessionChange  = "session_change"
)

// Client is the authentication facade the presentation layer talks to. It
// owns the session store, the audit dispatcher, and the metrics system, and
// funnels every operation through the one configured [Backend].
//
// All methods are safe for concurrent use. Errors returned by operations are
// always drawn from the closed taxonomy in errors.go.
type Client struct {
	config  Config
	backend Backend

	sessions     *session.Store
	releaseWatch func()

	audit   *auditDispatcher
	metrics *Metrics
}

// Sessions exposes the session store for reads and subscriptions.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// Close releases the backend subscription and drains the audit dispatcher.
// Safe to call more than once.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.releaseWatch != nil {
		c.releaseWatch()
	}
	if c.sessions != nil {
		c.sessions.Close()
	}
	c.audit.Close()
}

// Metrics returns the client's metrics system.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot deep-copies the current counters and histogram buckets.
// Exporters read through this method.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events discarded under backpressure.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// SignIn authenticates with an email and password. The password is validated
// against the local strength policy before the backend is called, the same
// way registration is.
func (c *Client) SignIn(ctx context.Context, creds Credentials) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return flows.RunSubmit(ctx, creds.Email, creds.Password, "", "", c.submitDeps(false))
}

// Register creates a new account. Password and confirmation must match and
// the password must pass the strength policy; neither failure reaches the
// backend.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return flows.RunSubmit(ctx, req.Email, req.Password, req.ConfirmPassword, req.DisplayName, c.submitDeps(true))
}

// SocialSignIn authenticates through an external identity provider. A flow
// the user abandons returns [ErrPopupCancelled].
func (c *Client) SocialSignIn(ctx context.Context, providerID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return flows.RunSocialSignIn(ctx, providerID, flows.SocialDeps{
		SignIn: func(ctx context.Context, providerID string) error {
			_, err := c.backend.SocialSignIn(ctx, providerID)
			return err
		},
		MapBackendError: c.mapBackendError,
		MetricInc:       c.metricInc,
		EmitAudit:       c.flowAudit,
		Metrics: flows.SocialMetrics{
			Success:   int(MetricSocialSuccess),
			Failure:   int(MetricSocialFailure),
			Cancelled: int(MetricSocialCancelled),
		},
		Event: auditSocialSignIn,
		Errors: flows.SocialErrors{
			NotReady:  ErrGeneric,
			Cancelled: ErrPopupCancelled,
		},
	})
}

// RequestPasswordReset asks the backend to send a reset email. Independent of
// any pending submission; any failure surfaces as [ErrResetFailed].
func (c *Client) RequestPasswordReset(ctx context.Context, req ResetRequest) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return flows.RunPasswordReset(ctx, req.Email, flows.ResetDeps{
		Send:      c.backend.SendPasswordReset,
		MetricInc: c.metricInc,
		EmitAudit: c.flowAudit,
		Metrics: flows.ResetMetrics{
			Requested: int(MetricResetRequested),
			Failure:   int(MetricResetFailure),
		},
		Event: auditPasswordReset,
		Errors: flows.ResetErrors{
			NotReady:    ErrResetFailed,
			ResetFailed: ErrResetFailed,
		},
	})
}

// ChangePassword replaces the signed-in account's password after a fresh
// reauthentication with the current one. Fails with [ErrReauthFailed] before
// any mutation when the gate does not pass.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	deps := c.sensitiveDeps(auditPasswordChange, flows.SensitiveMetrics{
		ReauthFailure: int(MetricReauthFailure),
		Success:       int(MetricPasswordChangeSuccess),
		Failure:       int(MetricPasswordChangeFailure),
	})

	return flows.RunChangePassword(ctx, currentPassword, newPassword, c.backend.UpdatePassword, deps)
}

// DeleteAccount removes the signed-in account after a fresh
// reauthentication. The resulting anonymous session arrives through the
// backend's change notification; the client never forges it locally.
func (c *Client) DeleteAccount(ctx context.Context, currentPassword string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	deps := c.sensitiveDeps(auditAccountDelete, flows.SensitiveMetrics{
		ReauthFailure: int(MetricReauthFailure),
		Success:       int(MetricAccountDeleteSuccess),
		Failure:       int(MetricAccountDeleteFailure),
	})

	return flows.RunDeleteAccount(ctx, currentPassword, c.backend.DeleteAccount, deps)
}

// SignOut ends the current session. Signing out while anonymous is a no-op
// success.
func (c *Client) SignOut(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	email := ""
	if current := c.sessions.Current(); current.Authenticated() {
		email = current.Identity.Email
	}

	if err := c.backend.SignOut(ctx); err != nil {
		c.flowAudit(ctx, auditSignOut, false, email, err, nil)
		return c.mapBackendError(err)
	}

	c.metrics.Inc(MetricSignOut)
	c.flowAudit(ctx, auditSignOut, true, email, nil, nil)
	return nil
}

func (c *Client) submitDeps(registering bool) flows.SubmitDeps {
	return flows.SubmitDeps{
		Registering:      registering,
		ValidatePassword: password.ValidatePolicy,
		SignIn: func(ctx context.Context, email, pw string) error {
			_, err := c.backend.SignIn(ctx, email, pw)
			return err
		},
		Register: func(ctx context.Context, email, pw, displayName string) error {
			_, err := c.backend.Register(ctx, RegistrationRequest{
				Credentials: Credentials{Email: email, Password: pw},
				DisplayName: displayName,
			})
			return err
		},
		MapBackendError: c.mapBackendError,
		MetricInc:       c.metricInc,
		Observe: func(d time.Duration) {
			c.metrics.Observe(MetricSubmitLatency, d)
		},
		EmitAudit: c.flowAudit,
		Metrics: flows.SubmitMetrics{
			Success:            int(c.submitSuccessMetric(registering)),
			Failure:            int(c.submitFailureMetric(registering)),
			ValidationRejected: int(MetricValidationRejected),
		},
		Events: flows.SubmitEvents{
			SignIn:   auditSignIn,
			Register: auditRegister,
		},
		Errors: flows.SubmitErrors{
			NotReady:         ErrGeneric,
			PasswordMismatch: ErrPasswordMismatch,
			WeakPassword:     ErrWeakPassword,
		},
	}
}

func (c *Client) sensitiveDeps(event string, metrics flows.SensitiveMetrics) flows.SensitiveDeps {
	return flows.SensitiveDeps{
		Current:          c.sessions.Current,
		Reauthenticate:   c.backend.Reauthenticate,
		ValidatePassword: password.ValidatePolicy,
		MapBackendError:  c.mapBackendError,
		MetricInc:        c.metricInc,
		EmitAudit:        c.flowAudit,
		Metrics:          metrics,
		Event:            event,
		Errors: flows.SensitiveErrors{
			NotReady:     ErrGeneric,
			ReauthFailed: ErrReauthFailed,
			WeakPassword: ErrWeakPassword,
		},
	}
}

func (c *Client) submitSuccessMetric(registering bool) MetricID {
	if registering {
		return MetricRegisterSuccess
	}
	return MetricSignInSuccess
}

func (c *Client) submitFailureMetric(registering bool) MetricID {
	if registering {
		return MetricRegisterFailure
	}
	return MetricSignInFailure
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.config.Network.Timeout
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) metricInc(id int) {
	c.metrics.Inc(MetricID(id))
}

// mapBackendError translates an adapter failure into the closed taxonomy.
// Codes drive the mapping; message text never does.
func (c *Client) mapBackendError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrNetwork
	}

	switch CodeOf(err) {
	case CodeEmailInUse:
		return ErrEmailInUse
	case CodeInvalidCredential:
		return ErrInvalidCredential
	case CodeUserNotFound:
		return ErrUserNotFound
	case CodeInvalidEmail:
		return ErrInvalidEmail
	case CodeWeakPassword:
		return ErrWeakPassword
	case CodePopupCancelled:
		return ErrPopupCancelled
	case CodeReauthFailed:
		return ErrReauthFailed
	case CodeNetwork:
		return ErrNetwork
	default:
		return ErrGeneric
	}
}

// flowAudit adapts the audit dispatcher to the flow packages' emit shape.
// The meta closure only runs when audit is enabled.
func (c *Client) flowAudit(ctx context.Context, eventType string, success bool, email string, cause error, meta func() map[string]string) {
	if c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Email:     email,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if meta != nil {
		event.Metadata = meta()
	}

	c.emitAudit(ctx, event)
}

func (c *Client) onSessionChange(s Session) {
	c.metrics.Inc(MetricSessionChanges)

	if c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditSessionChange,
		Success:   true,
	}
	if s.Authenticated() {
		event.Email = s.Identity.Email
		event.UserID = s.Identity.ID
		event.Metadata = map[string]string{"state": "authenticated"}
	} else {
		event.Metadata = map[string]string{"state": "anonymous"}
	}

	c.emitAudit(context.Background(), event)
}
