package authclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestControllerStartsSigningIn(t *testing.T) {
	c := NewController(newTestClient(t, newMockBackend()))
	if c.Mode() != ModeSigningIn {
		t.Fatalf("expected ModeSigningIn, got %v", c.Mode())
	}
}

func TestControllerToggleClearsError(t *testing.T) {
	ctrl := NewController(newTestClient(t, newMockBackend()))

	err := ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", "")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if ctrl.Err() == nil {
		t.Fatalf("expected surfaced error")
	}

	if mode := ctrl.ToggleMode(); mode != ModeRegistering {
		t.Fatalf("expected ModeRegistering, got %v", mode)
	}
	if ctrl.Err() != nil {
		t.Fatalf("toggle must clear the last error")
	}
}

func TestControllerSubmitRegisters(t *testing.T) {
	backend := newMockBackend()
	c := newTestClient(t, backend)
	ctrl := NewController(c)
	ctrl.ToggleMode()

	if err := ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", "Abcdef1!"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.regCalls != 1 {
		t.Fatalf("expected one register call, got %d", backend.regCalls)
	}
	if !c.Sessions().Current().Authenticated() {
		t.Fatalf("expected authenticated session")
	}
}

// blockingBackend wedges SignIn until released, to hold the submission gate
// open from the test.
type blockingBackend struct {
	*mockBackend
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingBackend) SignIn(ctx context.Context, email, pw string) (Session, error) {
	b.once.Do(func() {
		close(b.entered)
		select {
		case <-b.release:
		case <-ctx.Done():
		}
	})
	return b.mockBackend.SignIn(context.Background(), email, pw)
}

func TestControllerRejectsConcurrentSubmission(t *testing.T) {
	backend := &blockingBackend{
		mockBackend: newMockBackend(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)
	ctrl := NewController(c)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", "")
	}()

	<-backend.entered

	if err := ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", ""); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("expected ErrSubmissionPending, got %v", err)
	}
	if err := ctrl.SignInWith(context.Background(), "google"); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("expected ErrSubmissionPending for social, got %v", err)
	}
	if !ctrl.Submitting() {
		t.Fatalf("expected submitting flag set")
	}
	if got := c.Metrics().Value(MetricSubmissionPending); got != 2 {
		t.Fatalf("expected 2 pending rejections, got %d", got)
	}

	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}

	// Gate reopens once the first attempt settles.
	if err := ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", ""); err != nil {
		t.Fatalf("expected gate reopened, got %v", err)
	}
}

func TestControllerResetNotGated(t *testing.T) {
	backend := &blockingBackend{
		mockBackend: newMockBackend(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	backend.users["a@example.com"] = "Abcdef1!"
	c := newTestClient(t, backend)
	ctrl := NewController(c)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Submit(context.Background(), "a@example.com", "Abcdef1!", "")
	}()
	<-backend.entered

	if err := ctrl.RequestReset(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("reset must not be gated on submission: %v", err)
	}

	close(backend.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("submission: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("submission never settled")
	}
}
