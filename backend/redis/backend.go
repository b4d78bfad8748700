package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authclient "github.com/HugoQuintal01/pocketbase-login-use-case"
	"github.com/HugoQuintal01/pocketbase-login-use-case/internal"
	"github.com/HugoQuintal01/pocketbase-login-use-case/password"
	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

const (
	opSignIn         = "sign_in"
	opRegister       = "register"
	opPasswordReset  = "password_reset"
	opResetConfirm   = "password_reset_confirm"
	opSocialSignIn   = "social_sign_in"
	opReauthenticate = "reauthenticate"
	opUpdatePassword = "update_password"
	opDeleteAccount  = "delete_account"
	opRestore        = "restore"
)

// Config configures a Redis-backed identity backend.
type Config struct {
	// Prefix namespaces every key. Defaults to "authclient".
	Prefix string
	// TokenSecret signs session tokens. Required.
	TokenSecret []byte
	// TokenTTL bounds session lifetime. Defaults to 1h.
	TokenTTL time.Duration
	// ResetTTL bounds reset-token lifetime. Defaults to 15m.
	ResetTTL time.Duration
	// Hasher overrides the password hasher. Defaults to argon2id with
	// [password.DefaultConfig].
	Hasher *password.Argon2
}

// Backend stores accounts in Redis hashes and issues stateless session
// tokens. It implements [authclient.Backend].
type Backend struct {
	rdb    redis.UniversalClient
	cfg    Config
	hasher *password.Argon2
	tokens tokenCodec

	notifier *session.Notifier

	mu    sync.Mutex
	token string
}

// New validates cfg and returns a Backend whose current session is
// anonymous.
func New(rdb redis.UniversalClient, cfg Config) (*Backend, error) {
	if rdb == nil {
		return nil, errors.New("redis backend: client required")
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, errors.New("redis backend: token secret must be at least 32 bytes")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "authclient"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 15 * time.Minute
	}

	hasher := cfg.Hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
	}

	return &Backend{
		rdb:      rdb,
		cfg:      cfg,
		hasher:   hasher,
		tokens:   tokenCodec{secret: cfg.TokenSecret, ttl: cfg.TokenTTL},
		notifier: session.NewNotifier(),
	}, nil
}

// ObserveSession implements [session.Source].
func (b *Backend) ObserveSession(fn func(session.Session)) (unsubscribe func()) {
	return b.notifier.Observe(fn)
}

// Token returns the current session token, or "" when anonymous.
func (b *Backend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *Backend) userKey(id string) string {
	return b.cfg.Prefix + ":user:" + id
}

func (b *Backend) emailKey(email string) string {
	return b.cfg.Prefix + ":email:" + strings.ToLower(email)
}

func (b *Backend) resetKey(digest string) string {
	return b.cfg.Prefix + ":reset:" + digest
}

// SignIn verifies the password against the stored argon2id hash and starts a
// session.
func (b *Backend) SignIn(ctx context.Context, email, pw string) (session.Session, error) {
	id, rec, err := b.loadByEmail(ctx, email)
	if err != nil {
		return session.Anonymous(), classify(opSignIn, err)
	}

	ok, err := b.hasher.Verify(pw, rec["pwhash"])
	if err != nil || !ok {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeInvalidCredential, opSignIn,
			errors.New("password verification failed"))
	}

	return b.startSession(opSignIn, id, rec)
}

// Register creates the account and signs it in. The email index is claimed
// with SetNX so concurrent registrations for one address cannot both win.
func (b *Backend) Register(ctx context.Context, req authclient.RegistrationRequest) (session.Session, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeInvalidEmail, opRegister, err)
	}

	hash, err := b.hasher.Hash(req.Password)
	if err != nil {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeWeakPassword, opRegister, err)
	}

	id := uuid.NewString()

	claimed, err := b.rdb.SetNX(ctx, b.emailKey(req.Email), id, 0).Result()
	if err != nil {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeNetwork, opRegister, err)
	}
	if !claimed {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeEmailInUse, opRegister,
			fmt.Errorf("email %q already registered", req.Email))
	}

	rec := map[string]string{
		"email":    strings.ToLower(req.Email),
		"name":     req.DisplayName,
		"verified": "0",
		"pwhash":   hash,
	}
	if err := b.rdb.HSet(ctx, b.userKey(id), rec).Err(); err != nil {
		// Roll the index claim back so the address is not stranded.
		_ = b.rdb.Del(ctx, b.emailKey(req.Email)).Err()
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeNetwork, opRegister, err)
	}

	return b.startSession(opRegister, id, rec)
}

// SendPasswordReset stores a hashed single-use token under a TTL. Unknown
// addresses succeed silently so the operation does not reveal which accounts
// exist.
func (b *Backend) SendPasswordReset(ctx context.Context, email string) error {
	id, err := b.rdb.Get(ctx, b.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opPasswordReset, err)
	}

	token, err := internal.NewResetToken()
	if err != nil {
		return authclient.NewBackendError(authclient.CodeUnknown, opPasswordReset, err)
	}
	digest, err := internal.HashResetToken(token)
	if err != nil {
		return authclient.NewBackendError(authclient.CodeUnknown, opPasswordReset, err)
	}

	key := b.resetKey(hex.EncodeToString(digest[:]))
	if err := b.rdb.Set(ctx, key, id, b.cfg.ResetTTL).Err(); err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opPasswordReset, err)
	}

	// Delivery is the deployment's concern; the token only leaves through
	// the configured mailer hook in a real installation.
	return nil
}

// ConfirmPasswordReset consumes a reset token and installs the new password.
// Not part of the core backend contract; deployments wire it to the link in
// the reset email.
func (b *Backend) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	digest, err := internal.HashResetToken(token)
	if err != nil {
		return authclient.NewBackendError(authclient.CodeInvalidCredential, opResetConfirm, err)
	}

	key := b.resetKey(hex.EncodeToString(digest[:]))
	id, err := b.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return authclient.NewBackendError(authclient.CodeInvalidCredential, opResetConfirm,
			errors.New("unknown or expired reset token"))
	}
	if err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opResetConfirm, err)
	}

	hash, err := b.hasher.Hash(newPassword)
	if err != nil {
		return authclient.NewBackendError(authclient.CodeWeakPassword, opResetConfirm, err)
	}

	if err := b.rdb.HSet(ctx, b.userKey(id), "pwhash", hash).Err(); err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opResetConfirm, err)
	}
	return nil
}

// SocialSignIn is not supported by this backend: there is no provider to
// hand the flow to.
func (b *Backend) SocialSignIn(ctx context.Context, providerID string) (session.Session, error) {
	return session.Anonymous(), authclient.NewBackendError(authclient.CodeBackendRejected, opSocialSignIn,
		fmt.Errorf("provider %q not supported", providerID))
}

// Reauthenticate verifies the password for the signed-in identity without
// touching session state.
func (b *Backend) Reauthenticate(ctx context.Context, current session.Session, pw string) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opReauthenticate,
			errors.New("no authenticated session"))
	}

	rec, err := b.rdb.HGetAll(ctx, b.userKey(current.Identity.ID)).Result()
	if err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opReauthenticate, err)
	}
	if len(rec) == 0 {
		return authclient.NewBackendError(authclient.CodeUserNotFound, opReauthenticate,
			errors.New("account record missing"))
	}

	ok, err := b.hasher.Verify(pw, rec["pwhash"])
	if err != nil || !ok {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opReauthenticate,
			errors.New("password verification failed"))
	}
	return nil
}

// UpdatePassword replaces the stored hash for the signed-in identity.
func (b *Backend) UpdatePassword(ctx context.Context, current session.Session, newPassword string) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opUpdatePassword,
			errors.New("no authenticated session"))
	}

	hash, err := b.hasher.Hash(newPassword)
	if err != nil {
		return authclient.NewBackendError(authclient.CodeWeakPassword, opUpdatePassword, err)
	}

	if err := b.rdb.HSet(ctx, b.userKey(current.Identity.ID), "pwhash", hash).Err(); err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opUpdatePassword, err)
	}
	return nil
}

// DeleteAccount removes the record and its email index, then publishes the
// anonymous session.
func (b *Backend) DeleteAccount(ctx context.Context, current session.Session) error {
	if !current.Authenticated() {
		return authclient.NewBackendError(authclient.CodeReauthFailed, opDeleteAccount,
			errors.New("no authenticated session"))
	}

	keys := []string{b.userKey(current.Identity.ID), b.emailKey(current.Identity.Email)}
	if err := b.rdb.Del(ctx, keys...).Err(); err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opDeleteAccount, err)
	}

	b.clearAuth()
	return nil
}

// SignOut drops the token locally. Tokens are stateless; nothing to revoke.
func (b *Backend) SignOut(ctx context.Context) error {
	b.clearAuth()
	return nil
}

// Restore resumes a session from a persisted token, re-reading the account
// record so a deleted user cannot come back from a stale token.
func (b *Backend) Restore(ctx context.Context, token string) error {
	claims, err := b.tokens.parse(token)
	if err != nil {
		return authclient.NewBackendError(authclient.CodeInvalidCredential, opRestore, err)
	}

	rec, err := b.rdb.HGetAll(ctx, b.userKey(claims.Subject)).Result()
	if err != nil {
		return authclient.NewBackendError(authclient.CodeNetwork, opRestore, err)
	}
	if len(rec) == 0 {
		return authclient.NewBackendError(authclient.CodeUserNotFound, opRestore,
			errors.New("account record missing"))
	}

	b.publishAuth(token, claims.Subject, rec)
	return nil
}

func (b *Backend) loadByEmail(ctx context.Context, email string) (string, map[string]string, error) {
	id, err := b.rdb.Get(ctx, b.emailKey(email)).Result()
	if err != nil {
		return "", nil, err
	}

	rec, err := b.rdb.HGetAll(ctx, b.userKey(id)).Result()
	if err != nil {
		return "", nil, err
	}
	if len(rec) == 0 {
		return "", nil, redis.Nil
	}
	return id, rec, nil
}

func (b *Backend) startSession(op, id string, rec map[string]string) (session.Session, error) {
	token, err := b.tokens.issue(id, rec["email"], rec["name"], rec["verified"] == "1", time.Now())
	if err != nil {
		return session.Anonymous(), authclient.NewBackendError(authclient.CodeUnknown, op, err)
	}

	return b.publishAuth(token, id, rec), nil
}

func (b *Backend) publishAuth(token, id string, rec map[string]string) session.Session {
	next := session.Session{Identity: &session.Identity{
		ID:            id,
		Email:         rec["email"],
		DisplayName:   rec["name"],
		EmailVerified: rec["verified"] == "1",
	}}

	b.mu.Lock()
	b.token = token
	b.mu.Unlock()

	b.notifier.Publish(next)
	return next
}

func (b *Backend) clearAuth() {
	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()

	b.notifier.Publish(session.Anonymous())
}

// classify maps storage-layer failures from the lookup helpers; explicit
// call sites build their codes inline.
func classify(op string, err error) error {
	if errors.Is(err, redis.Nil) {
		return authclient.NewBackendError(authclient.CodeUserNotFound, op, err)
	}
	return authclient.NewBackendError(authclient.CodeNetwork, op, err)
}
