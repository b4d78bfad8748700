package session

// Identity is a durable account record owned by the identity backend.
// DisplayName is empty when the account has none.
type Identity struct {
	ID            string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Session is the currently known authentication state. A nil Identity means
// anonymous. Exactly one Session value is current per [Store]; components
// read it, they never write it.
type Session struct {
	Identity *Identity
}

// Authenticated reports whether an identity is signed in.
func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// Anonymous is the session value with no identity.
func Anonymous() Session {
	return Session{}
}

// Source is the backend capability the store subscribes to. The callback is
// invoked at least once immediately with the currently known session, then
// on every change; the returned func releases the subscription.
type Source interface {
	ObserveSession(fn func(Session)) (unsubscribe func())
}
