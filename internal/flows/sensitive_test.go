package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/HugoQuintal01/pocketbase-login-use-case/password"
	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

var errReauth = errors.New("reauth failed")

type sensitiveRecorder struct {
	current     session.Session
	reauthErr   error
	reauthCalls int
	metrics     []int
}

func (r *sensitiveRecorder) deps() SensitiveDeps {
	return SensitiveDeps{
		Current: func() session.Session { return r.current },
		Reauthenticate: func(context.Context, session.Session, string) error {
			r.reauthCalls++
			return r.reauthErr
		},
		ValidatePassword: password.ValidatePolicy,
		MapBackendError:  func(err error) error { return errMapped },
		MetricInc:        func(id int) { r.metrics = append(r.metrics, id) },
		Metrics:          SensitiveMetrics{ReauthFailure: 1, Success: 2, Failure: 3},
		Event:            "password_change",
		Errors: SensitiveErrors{
			NotReady:     errNotReady,
			ReauthFailed: errReauth,
			WeakPassword: errWeak,
		},
	}
}

func signedIn() session.Session {
	return session.Session{Identity: &session.Identity{ID: "u1", Email: "a@example.com"}}
}

func TestChangePasswordSuccess(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn()}

	updates := 0
	err := RunChangePassword(context.Background(), "Old-pass1", "New-pass1",
		func(context.Context, session.Session, string) error {
			updates++
			return nil
		}, r.deps())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if r.reauthCalls != 1 || updates != 1 {
		t.Fatalf("expected reauth then update, got reauth=%d updates=%d", r.reauthCalls, updates)
	}
	if len(r.metrics) != 1 || r.metrics[0] != 2 {
		t.Fatalf("expected success metric, got %v", r.metrics)
	}
}

func TestChangePasswordReauthFailureBlocksMutation(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn(), reauthErr: errors.New("wrong password")}

	updates := 0
	err := RunChangePassword(context.Background(), "Wrong-pass1", "New-pass1",
		func(context.Context, session.Session, string) error {
			updates++
			return nil
		}, r.deps())
	if !errors.Is(err, errReauth) {
		t.Fatalf("expected reauth error, got %v", err)
	}
	if updates != 0 {
		t.Fatalf("mutation must not run after failed reauthentication")
	}
	if len(r.metrics) != 1 || r.metrics[0] != 1 {
		t.Fatalf("expected reauth-failure metric, got %v", r.metrics)
	}
}

func TestChangePasswordWithoutSession(t *testing.T) {
	r := &sensitiveRecorder{current: session.Anonymous()}

	err := RunChangePassword(context.Background(), "Old-pass1", "New-pass1",
		func(context.Context, session.Session, string) error { return nil }, r.deps())
	if !errors.Is(err, errReauth) {
		t.Fatalf("expected reauth error, got %v", err)
	}
	if r.reauthCalls != 0 {
		t.Fatalf("backend must not be called without a session")
	}
}

func TestChangePasswordWeakNewPassword(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn()}

	err := RunChangePassword(context.Background(), "Old-pass1", "weak",
		func(context.Context, session.Session, string) error { return nil }, r.deps())
	if !errors.Is(err, errWeak) {
		t.Fatalf("expected weak-password error, got %v", err)
	}
	if r.reauthCalls != 0 {
		t.Fatalf("policy failure must short-circuit before reauthentication")
	}
}

func TestChangePasswordBackendRejection(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn()}

	err := RunChangePassword(context.Background(), "Old-pass1", "New-pass1",
		func(context.Context, session.Session, string) error {
			return errors.New("stale record")
		}, r.deps())
	if !errors.Is(err, errMapped) {
		t.Fatalf("expected mapped error, got %v", err)
	}
	if len(r.metrics) != 1 || r.metrics[0] != 3 {
		t.Fatalf("expected failure metric, got %v", r.metrics)
	}
}

func TestDeleteAccountSuccess(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn()}

	removed := 0
	err := RunDeleteAccount(context.Background(), "Old-pass1",
		func(context.Context, session.Session) error {
			removed++
			return nil
		}, r.deps())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if removed != 1 || r.reauthCalls != 1 {
		t.Fatalf("expected reauth then delete, got reauth=%d removed=%d", r.reauthCalls, removed)
	}
}

func TestDeleteAccountReauthFailureBlocksDeletion(t *testing.T) {
	r := &sensitiveRecorder{current: signedIn(), reauthErr: errors.New("wrong password")}

	removed := 0
	err := RunDeleteAccount(context.Background(), "Wrong-pass1",
		func(context.Context, session.Session) error {
			removed++
			return nil
		}, r.deps())
	if !errors.Is(err, errReauth) {
		t.Fatalf("expected reauth error, got %v", err)
	}
	if removed != 0 {
		t.Fatalf("deletion must not run after failed reauthentication")
	}
}
