package route

import "github.com/HugoQuintal01/pocketbase-login-use-case/session"

// Class labels a screen's access rule.
type Class uint8

const (
	// Protected screens require a signed-in session; anonymous visitors are
	// redirected to the anonymous entry point.
	Protected Class = iota
	// PublicOnly screens are for anonymous visitors; signed-in users are
	// redirected to the authenticated entry point.
	PublicOnly
)

// Navigator performs a redirect. Implementations are typically thin wrappers
// over a UI router's navigate call.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a plain function to [Navigator].
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// Paths names the two redirect targets.
type Paths struct {
	// AnonymousEntry is where anonymous users belong (the sign-in screen).
	AnonymousEntry string
	// AuthenticatedEntry is where signed-in users belong.
	AuthenticatedEntry string
}

// Guard evaluates session state against a screen class and issues redirects
// through the navigator. Stateless between calls; one Guard serves any number
// of screens.
type Guard struct {
	store *session.Store
	nav   Navigator
	paths Paths
}

// NewGuard builds a Guard over the given store, navigator, and entry points.
func NewGuard(store *session.Store, nav Navigator, paths Paths) *Guard {
	return &Guard{
		store: store,
		nav:   nav,
		paths: paths,
	}
}

// Evaluate checks the current session against class and issues at most one
// redirect. It reports whether the user may stay on the screen.
func (g *Guard) Evaluate(class Class) bool {
	return g.apply(class, g.store.Current())
}

// Watch evaluates immediately and then re-evaluates on every session change,
// so a session expiring mid-visit removes the user from a protected screen
// without a page action. The returned func stops watching and is safe to
// call more than once.
func (g *Guard) Watch(class Class) (stop func()) {
	release := g.store.Subscribe(func(s session.Session) {
		g.apply(class, s)
	})
	g.apply(class, g.store.Current())
	return release
}

func (g *Guard) apply(class Class, s session.Session) bool {
	switch class {
	case Protected:
		if !s.Authenticated() {
			g.nav.Navigate(g.paths.AnonymousEntry)
			return false
		}
	case PublicOnly:
		if s.Authenticated() {
			g.nav.Navigate(g.paths.AuthenticatedEntry)
			return false
		}
	}
	return true
}
