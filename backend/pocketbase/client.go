package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authclient "github.com/HugoQuintal01/pocketbase-login-use-case"
	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// Operation names carried inside backend errors.
const (
	opSignIn         = "sign_in"
	opRegister       = "register"
	opPasswordReset  = "password_reset"
	opSocialSignIn   = "social_sign_in"
	opReauthenticate = "reauthenticate"
	opUpdatePassword = "update_password"
	opDeleteAccount  = "delete_account"
	opRestore        = "restore"
)

// OAuthGrant is the artifact an [AuthorizeFunc] produces after the user
// consents at the provider.
type OAuthGrant struct {
	Code         string
	CodeVerifier string
	RedirectURL  string
}

// AuthorizeFunc runs the interactive part of an OAuth2 flow for the named
// provider. Return [ErrAuthorizationCancelled] when the user backs out.
type AuthorizeFunc func(ctx context.Context, providerID string) (OAuthGrant, error)

// Config configures a PocketBase backend.
type Config struct {
	// BaseURL is the server root, e.g. "https://pb.example.com".
	BaseURL string
	// Collection is the auth collection name. Defaults to "users".
	Collection string
	// HTTPClient overrides the transport. When nil a client with Timeout is
	// used.
	HTTPClient *http.Client
	// Timeout bounds each request when HTTPClient is nil. Defaults to 10s.
	Timeout time.Duration
	// Authorize performs the interactive OAuth2 step for SocialSignIn.
	// Leaving it nil makes every social sign-in fail as rejected.
	Authorize AuthorizeFunc
}

type authRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

type authResponse struct {
	Token  string     `json:"token"`
	Record authRecord `json:"record"`
}

// Backend is a [authclient.Backend] over the PocketBase records API.
type Backend struct {
	cfg      Config
	http     *http.Client
	notifier *session.Notifier

	mu           sync.Mutex
	token        string
	lastPassword string
	expiry       *time.Timer
}

// New validates cfg and returns a Backend whose current session is
// anonymous.
func New(cfg Config) (*Backend, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("pocketbase: base URL required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("pocketbase: invalid base URL: %w", err)
	}
	if cfg.Collection == "" {
		cfg.Collection = "users"
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Backend{
		cfg:      cfg,
		http:     cfg.HTTPClient,
		notifier: session.NewNotifier(),
	}, nil
}

// ObserveSession implements [session.Source].
func (b *Backend) ObserveSession(fn func(session.Session)) (unsubscribe func()) {
	return b.notifier.Observe(fn)
}

// Token returns the current auth token, or "" when anonymous. Callers may
// persist it and hand it to [Backend.Restore] later.
func (b *Backend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// SignIn implements password authentication via auth-with-password.
func (b *Backend) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	resp, err := b.authWithPassword(ctx, email, password)
	if err != nil {
		return session.Anonymous(), classify(opSignIn, err)
	}

	return b.setAuth(resp, ""), nil
}

// Register creates the record and then signs it in, so a successful
// registration leaves the user authenticated like the password flow does.
func (b *Backend) Register(ctx context.Context, req authclient.RegistrationRequest) (session.Session, error) {
	body := map[string]any{
		"email":           req.Email,
		"password":        req.Password,
		"passwordConfirm": req.Password,
	}
	if req.DisplayName != "" {
		body["name"] = req.DisplayName
	}

	var created authRecord
	if err := b.doJSON(ctx, http.MethodPost, b.collectionPath("records"), "", body, &created); err != nil {
		return session.Anonymous(), classify(opRegister, err)
	}

	resp, err := b.authWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return session.Anonymous(), classify(opRegister, err)
	}

	return b.setAuth(resp, ""), nil
}

// SendPasswordReset asks the server to email a reset link. PocketBase
// answers 204 for unknown addresses too, so existence does not leak here.
func (b *Backend) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]any{"email": email}
	if err := b.doJSON(ctx, http.MethodPost, b.collectionPath("request-password-reset"), "", body, nil); err != nil {
		return classify(opPasswordReset, err)
	}
	return nil
}

// SocialSignIn runs the configured Authorize hook and exchanges its grant
// via auth-with-oauth2.
func (b *Backend) SocialSignIn(ctx context.Context, providerID string) (session.Session, error) {
	if b.cfg.Authorize == nil {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeBackendRejected, opSocialSignIn,
			fmt.Errorf("no authorize hook configured"))
	}

	grant, err := b.cfg.Authorize(ctx, providerID)
	if err != nil {
		code := authclient.CodeBackendRejected
		if errors.Is(err, ErrAuthorizationCancelled) {
			code = authclient.CodePopupCancelled
		}
		return session.Anonymous(), authclient.NewBackendError(code, opSocialSignIn, err)
	}

	body := map[string]any{
		"provider":     providerID,
		"code":         grant.Code,
		"codeVerifier": grant.CodeVerifier,
		"redirectUrl":  grant.RedirectURL,
	}

	var resp authResponse
	if err := b.doJSON(ctx, http.MethodPost, b.collectionPath("auth-with-oauth2"), "", body, &resp); err != nil {
		return session.Anonymous(), classify(opSocialSignIn, err)
	}

	return b.setAuth(resp, ""), nil
}

// Reauthenticate proves the password freshly. On success the adapter also
// caches it: the subsequent password change needs it as oldPassword.
func (b *Backend) Reauthenticate(ctx context.Context, current session.Session, password string) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opReauthenticate,
			fmt.Errorf("no authenticated session"))
	}

	resp, err := b.authWithPassword(ctx, current.Identity.Email, password)
	if err != nil {
		mapped := classify(opReauthenticate, err)
		if authclient.CodeOf(mapped) == authclient.CodeInvalidCredential {
			return authclient.NewBackendError(authclient.CodeReauthFailed, opReauthenticate, err)
		}
		return mapped
	}

	b.setAuth(resp, password)
	return nil
}

// UpdatePassword patches the record's password. PocketBase requires the old
// password in the same request and invalidates all tokens afterwards, so the
// adapter re-authenticates with the new password to keep the session alive.
func (b *Backend) UpdatePassword(ctx context.Context, current session.Session, newPassword string) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opUpdatePassword,
			fmt.Errorf("no authenticated session"))
	}

	b.mu.Lock()
	token := b.token
	oldPassword := b.lastPassword
	b.lastPassword = ""
	b.mu.Unlock()

	if oldPassword == "" {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opUpdatePassword,
			fmt.Errorf("no recent reauthentication"))
	}

	body := map[string]any{
		"oldPassword":     oldPassword,
		"password":        newPassword,
		"passwordConfirm": newPassword,
	}

	path := b.collectionPath("records") + "/" + url.PathEscape(current.Identity.ID)
	if err := b.doJSON(ctx, http.MethodPatch, path, token, body, nil); err != nil {
		return classify(opUpdatePassword, err)
	}

	resp, err := b.authWithPassword(ctx, current.Identity.Email, newPassword)
	if err != nil {
		// The change stuck but the refresh did not; drop to anonymous so the
		// store never claims a session backed by a dead token.
		b.clearAuth()
		return classify(opUpdatePassword, err)
	}

	b.setAuth(resp, "")
	return nil
}

// DeleteAccount removes the record and drops to anonymous. The store learns
// about the transition through the published notification.
func (b *Backend) DeleteAccount(ctx context.Context, current session.Session) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opDeleteAccount,
			fmt.Errorf("no authenticated session"))
	}

	b.mu.Lock()
	token := b.token
	b.mu.Unlock()

	path := b.collectionPath("records") + "/" + url.PathEscape(current.Identity.ID)
	if err := b.doJSON(ctx, http.MethodDelete, path, token, nil, nil); err != nil {
		return classify(opDeleteAccount, err)
	}

	b.clearAuth()
	return nil
}

// SignOut discards the token locally. PocketBase tokens are stateless so
// there is nothing to revoke server-side.
func (b *Backend) SignOut(ctx context.Context) error {
	b.clearAuth()
	return nil
}

// Restore validates a persisted token via auth-refresh and, when the server
// accepts it, resumes the session.
func (b *Backend) Restore(ctx context.Context, token string) error {
	if token == "" {
		return authclient.NewBackendError(authclient.CodeInvalidCredential, opRestore,
			fmt.Errorf("empty token"))
	}

	var resp authResponse
	if err := b.doJSON(ctx, http.MethodPost, b.collectionPath("auth-refresh"), token, nil, &resp); err != nil {
		return classify(opRestore, err)
	}

	b.setAuth(resp, "")
	return nil
}

func (b *Backend) authWithPassword(ctx context.Context, email, password string) (authResponse, error) {
	body := map[string]any{
		"identity": email,
		"password": password,
	}

	var resp authResponse
	err := b.doJSON(ctx, http.MethodPost, b.collectionPath("auth-with-password"), "", body, &resp)
	return resp, err
}

// setAuth stores the token, schedules expiry, and publishes the new session.
// password, when non-empty, is cached for the next password change.
func (b *Backend) setAuth(resp authResponse, password string) session.Session {
	next := session.Session{Identity: &session.Identity{
		ID:            resp.Record.ID,
		Email:         resp.Record.Email,
		DisplayName:   resp.Record.Name,
		EmailVerified: resp.Record.Verified,
	}}

	b.mu.Lock()
	b.token = resp.Token
	if password != "" {
		b.lastPassword = password
	}
	if b.expiry != nil {
		b.expiry.Stop()
		b.expiry = nil
	}
	if until, ok := tokenLifetime(resp.Token); ok {
		b.expiry = time.AfterFunc(until, b.expire)
	}
	b.mu.Unlock()

	b.notifier.Publish(next)
	return next
}

func (b *Backend) clearAuth() {
	b.mu.Lock()
	b.token = ""
	b.lastPassword = ""
	if b.expiry != nil {
		b.expiry.Stop()
		b.expiry = nil
	}
	b.mu.Unlock()

	b.notifier.Publish(session.Anonymous())
}

// expire fires when the token's exp claim passes. The session ends exactly
// like a sign-out: the notifier publishes anonymous and every observer
// reacts.
func (b *Backend) expire() {
	b.clearAuth()
}

// tokenLifetime reads the exp claim without verifying the signature — the
// server remains the authority; this only schedules the local drop.
func tokenLifetime(token string) (time.Duration, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return 0, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	until := time.Until(exp.Time)
	if until <= 0 {
		return 0, false
	}
	return until, true
}

func (b *Backend) collectionPath(tail string) string {
	return "/api/collections/" + url.PathEscape(b.cfg.Collection) + "/" + tail
}

func (b *Backend) doJSON(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(b.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	apiErr := &apiError{Status: resp.StatusCode}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if readErr == nil {
		_ = json.Unmarshal(raw, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
