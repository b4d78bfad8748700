// Package session holds the client's view of the authenticated session.
//
// [Store] is the single subscription point for backend session-change
// notifications: it subscribes to a [Source] exactly once, keeps the last
// known [Session], and republishes every change to its own observers in
// subscription order. [Notifier] is the matching publication hub backend
// adapters use to implement [Source].
//
// # Ordering guarantee
//
// Notification passes are serialized: observers for session N all run before
// any observer sees session N+1. Observers therefore never see two session
// values interleave within one pass.
//
// # What this package must NOT do
//
//   - Import the root package or any backend (no upward imports).
//   - Mutate the session from anywhere but the Source callback.
package session
