package authclient

import (
	"context"
	"errors"
	"testing"

	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// mockBackend implements Backend with scriptable failures and call counters.
// Successes publish the resulting session through a notifier, the same way
// real adapters do.
type mockBackend struct {
	notifier *session.Notifier

	signInErr error
	regErr    error
	resetErr  error
	socialErr error
	reauthErr error
	updateErr error
	deleteErr error

	signInCalls int
	regCalls    int
	resetCalls  int
	socialCalls int
	reauthCalls int
	updateCalls int
	deleteCalls int
	outCalls    int

	users map[string]string // email -> password, for sign-in scripting
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		notifier: session.NewNotifier(),
		users:    map[string]string{},
	}
}

func (m *mockBackend) ObserveSession(fn func(session.Session)) func() {
	return m.notifier.Observe(fn)
}

func (m *mockBackend) authenticated(email string) session.Session {
	s := session.Session{Identity: &session.Identity{ID: "id-" + email, Email: email}}
	m.notifier.Publish(s)
	return s
}

func (m *mockBackend) SignIn(_ context.Context, email, pw string) (Session, error) {
	m.signInCalls++
	if m.signInErr != nil {
		return session.Anonymous(), m.signInErr
	}
	if stored, ok := m.users[email]; !ok {
		return session.Anonymous(), NewBackendError(CodeUserNotFound, "sign_in", errors.New("no such user"))
	} else if stored != pw {
		return session.Anonymous(), NewBackendError(CodeInvalidCredential, "sign_in", errors.New("wrong password"))
	}
	return m.authenticated(email), nil
}

func (m *mockBackend) Register(_ context.Context, req RegistrationRequest) (Session, error) {
	m.regCalls++
	if m.regErr != nil {
		return session.Anonymous(), m.regErr
	}
	if _, exists := m.users[req.Email]; exists {
		return session.Anonymous(), NewBackendError(CodeEmailInUse, "register", errors.New("duplicate"))
	}
	m.users[req.Email] = req.Password
	return m.authenticated(req.Email), nil
}

func (m *mockBackend) SendPasswordReset(context.Context, string) error {
	m.resetCalls++
	return m.resetErr
}

func (m *mockBackend) SocialSignIn(_ context.Context, providerID string) (Session, error) {
	m.socialCalls++
	if m.socialErr != nil {
		return session.Anonymous(), m.socialErr
	}
	return m.authenticated(providerID + "@social.example"), nil
}

func (m *mockBackend) Reauthenticate(context.Context, Session, string) error {
	m.reauthCalls++
	return m.reauthErr
}

func (m *mockBackend) UpdatePassword(context.Context, Session, string) error {
	m.updateCalls++
	return m.updateErr
}

func (m *mockBackend) DeleteAccount(_ context.Context, current Session) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.users, current.Identity.Email)
	m.notifier.Publish(session.Anonymous())
	return nil
}

func (m *mockBackend) SignOut(context.Context) error {
	m.outCalls++
	m.notifier.Publish(session.Anonymous())
	return nil
}

func newTestClient(t *testing.T, backend Backend) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true

	c, err := New().WithConfig(cfg).WithBackend(backend).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestBuildRequiresBackend(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrBackendRequired) {
		t.Fatalf("expected ErrBackendRequired, got %v", err)
	}
}

func TestBuildIsSingleUse(t *testing.T) {
	b := New().WithBackend(newMockBackend())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected error on second Build")
	}
}

func TestSignInSuccessUpdatesStore(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	if err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	current := c.Sessions().Current()
	if !current.Authenticated() || current.Identity.Email != "a@example.com" {
		t.Fatalf("expected authenticated session, got %+v", current)
	}
	if got := c.Metrics().Value(MetricSignInSuccess); got != 1 {
		t.Fatalf("expected sign-in success metric 1, got %d", got)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Wrong-pass1"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if c.Sessions().Current().Authenticated() {
		t.Fatalf("session must stay anonymous after failed sign-in")
	}
}

func TestSignInUnknownUserThenRegister(t *testing.T) {
	backend := newMockBackend()
	c := newTestClient(t, backend)

	err := c.SignIn(context.Background(), Credentials{Email: "new@example.com", Password: "Abcdef1!"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	err = c.Register(context.Background(), RegistrationRequest{
		Credentials:     Credentials{Email: "new@example.com", Password: "Abcdef1!"},
		ConfirmPassword: "Abcdef1!",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !c.Sessions().Current().Authenticated() {
		t.Fatalf("expected authenticated session after registration")
	}
}

func TestRegisterMismatchNeverReachesBackend(t *testing.T) {
	backend := newMockBackend()
	c := newTestClient(t, backend)

	err := c.Register(context.Background(), RegistrationRequest{
		Credentials:     Credentials{Email: "a@example.com", Password: "Abcdef1!"},
		ConfirmPassword: "Different1!",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if backend.regCalls != 0 {
		t.Fatalf("backend must not be called on mismatch, got %d calls", backend.regCalls)
	}
	if got := c.Metrics().Value(MetricValidationRejected); got != 1 {
		t.Fatalf("expected validation-rejected metric 1, got %d", got)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	backend := newMockBackend()
	c := newTestClient(t, backend)

	err := c.Register(context.Background(), RegistrationRequest{
		Credentials:     Credentials{Email: "a@example.com", Password: "abcdefgh"},
		ConfirmPassword: "abcdefgh",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if backend.regCalls != 0 {
		t.Fatalf("backend must not be called on weak password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	err := c.Register(context.Background(), RegistrationRequest{
		Credentials:     Credentials{Email: "a@example.com", Password: "Abcdef1!"},
		ConfirmPassword: "Abcdef1!",
	})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestSocialSignInCancelled(t *testing.T) {
	backend := newMockBackend()
	backend.socialErr = NewBackendError(CodePopupCancelled, "social_sign_in", errors.New("popup closed"))
	c := newTestClient(t, backend)

	err := c.SocialSignIn(context.Background(), "google")
	if !errors.Is(err, ErrPopupCancelled) {
		t.Fatalf("expected ErrPopupCancelled, got %v", err)
	}
	if got := c.Metrics().Value(MetricSocialCancelled); got != 1 {
		t.Fatalf("expected cancelled metric 1, got %d", got)
	}
	if got := c.Metrics().Value(MetricSocialFailure); got != 0 {
		t.Fatalf("cancellation must not count as failure")
	}
}

func TestRequestPasswordResetIdempotent(t *testing.T) {
	backend := newMockBackend()
	c := newTestClient(t, backend)

	for i := 0; i < 2; i++ {
		if err := c.RequestPasswordReset(context.Background(), ResetRequest{Email: "a@example.com"}); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
	}
	if backend.resetCalls != 2 {
		t.Fatalf("expected 2 reset calls, got %d", backend.resetCalls)
	}
	if c.Sessions().Current().Authenticated() {
		t.Fatalf("reset must not change session state")
	}
}

func TestRequestPasswordResetCollapsesFailures(t *testing.T) {
	backend := newMockBackend()
	backend.resetErr = NewBackendError(CodeUserNotFound, "password_reset", errors.New("no such user"))
	c := newTestClient(t, backend)

	err := c.RequestPasswordReset(context.Background(), ResetRequest{Email: "ghost@example.com"})
	if !errors.Is(err, ErrResetFailed) {
		t.Fatalf("expected ErrResetFailed, got %v", err)
	}
}

func TestChangePasswordReauthFailureBlocksUpdate(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	if err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	backend.reauthErr = NewBackendError(CodeReauthFailed, "reauthenticate", errors.New("wrong password"))

	err := c.ChangePassword(context.Background(), "Wrong-pass1", "New-pass1!")
	if !errors.Is(err, ErrReauthFailed) {
		t.Fatalf("expected ErrReauthFailed, got %v", err)
	}
	if backend.updateCalls != 0 {
		t.Fatalf("update must not run after failed reauthentication")
	}
	if !c.Sessions().Current().Authenticated() {
		t.Fatalf("failed change must not end the session")
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	if err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := c.ChangePassword(context.Background(), "Abcdef1!", "New-pass1!"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if backend.reauthCalls != 1 || backend.updateCalls != 1 {
		t.Fatalf("expected reauth then update, got reauth=%d update=%d", backend.reauthCalls, backend.updateCalls)
	}
}

func TestChangePasswordWithoutSession(t *testing.T) {
	c := newTestClient(t, newMockBackend())

	err := c.ChangePassword(context.Background(), "Old-pass1!", "New-pass1!")
	if !errors.Is(err, ErrReauthFailed) {
		t.Fatalf("expected ErrReauthFailed, got %v", err)
	}
}

func TestDeleteAccountEndsSessionViaNotification(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	if err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := c.DeleteAccount(context.Background(), "Abcdef1!"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	if c.Sessions().Current().Authenticated() {
		t.Fatalf("expected anonymous session after deletion")
	}
	if _, exists := backend.users["a@example.com"]; exists {
		t.Fatalf("expected account removed")
	}
}

func TestSignOut(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	if err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if c.Sessions().Current().Authenticated() {
		t.Fatalf("expected anonymous session after sign-out")
	}
	if got := c.Metrics().Value(MetricSignOut); got != 1 {
		t.Fatalf("expected sign-out metric 1, got %d", got)
	}
}

func TestUnknownBackendCodeMapsToGeneric(t *testing.T) {
	backend := newMockBackend()
	backend.signInErr = NewBackendError(CodeUnknown, "sign_in", errors.New("disk on fire"))
	c := newTestClient(t, backend)

	err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"})
	if !errors.Is(err, ErrGeneric) {
		t.Fatalf("expected ErrGeneric, got %v", err)
	}
}

func TestRawBackendErrorNeverEscapes(t *testing.T) {
	backend := newMockBackend()
	backend.signInErr = NewBackendError(CodeNetwork, "sign_in", errors.New("dial tcp: connection refused"))
	c := newTestClient(t, backend)

	err := c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Fatalf("raw backend text leaked: %q", err.Error())
	}
}

func TestSessionChangeMetric(t *testing.T) {
	backend := newMockBackend()
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)

	_ = c.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "Abcdef1!"})
	_ = c.SignOut(context.Background())

	if got := c.Metrics().Value(MetricSessionChanges); got != 2 {
		t.Fatalf("expected 2 session changes, got %d", got)
	}
}
