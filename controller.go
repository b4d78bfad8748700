package authclient

import (
	"context"
	"sync"
)

// Mode selects which of the two credential flows a submission runs.
type Mode uint8

const (
	// ModeSigningIn submits the form as a password sign-in.
	ModeSigningIn Mode = iota
	// ModeRegistering submits the form as a registration.
	ModeRegistering
)

// String returns "sign_in" or "register".
func (m Mode) String() string {
	if m == ModeRegistering {
		return "register"
	}
	return "sign_in"
}

// Controller adds form-level state on top of [Client]: the sign-in/register
// mode toggle, the single-submission gate, and the last surfaced error.
// One Controller backs one credential form; safe for concurrent use.
type Controller struct {
	client *Client

	mu         sync.Mutex
	mode       Mode
	submitting bool
	lastErr    error
}

// NewController wraps a client in form state starting in [ModeSigningIn].
func NewController(client *Client) *Controller {
	return &Controller{client: client}
}

// Mode returns the current submission mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ToggleMode flips between signing in and registering and clears the last
// error, since it belonged to the other flow.
func (c *Controller) ToggleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeSigningIn {
		c.mode = ModeRegistering
	} else {
		c.mode = ModeSigningIn
	}
	c.lastErr = nil
	return c.mode
}

// Submitting reports whether a submission is outstanding.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Err returns the error surfaced by the most recent submission, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit runs the form in its current mode. While one submission is
// outstanding every further Submit and SignInWith call fails fast with
// [ErrSubmissionPending] without reaching the backend; the gate reopens when
// the first attempt settles, success or failure.
func (c *Controller) Submit(ctx context.Context, email, password, confirmPassword string) error {
	mode, err := c.begin()
	if err != nil {
		return err
	}

	if mode == ModeRegistering {
		err = c.client.Register(ctx, RegistrationRequest{
			Credentials:     Credentials{Email: email, Password: password},
			ConfirmPassword: confirmPassword,
		})
	} else {
		err = c.client.SignIn(ctx, Credentials{Email: email, Password: password})
	}

	c.settle(err)
	return err
}

// SignInWith runs a social sign-in through the same single-submission gate
// as Submit.
func (c *Controller) SignInWith(ctx context.Context, providerID string) error {
	if _, err := c.begin(); err != nil {
		return err
	}

	err := c.client.SocialSignIn(ctx, providerID)
	c.settle(err)
	return err
}

// RequestReset asks for a password-reset email. Deliberately not gated on
// the submission flag: a user waiting on a slow sign-in may still ask for a
// reset.
func (c *Controller) RequestReset(ctx context.Context, email string) error {
	err := c.client.RequestPasswordReset(ctx, ResetRequest{Email: email})

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	return err
}

func (c *Controller) begin() (Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		c.client.metrics.Inc(MetricSubmissionPending)
		return c.mode, ErrSubmissionPending
	}
	c.submitting = true
	c.lastErr = nil
	return c.mode, nil
}

func (c *Controller) settle(err error) {
	c.mu.Lock()
	c.submitting = false
	c.lastErr = err
	c.mu.Unlock()
}
