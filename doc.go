// Package authclient manages the client side of an authenticated identity:
// signing up, signing in (password or social provider), requesting password
// resets, observing session changes for the lifetime of the application, and
// performing reauthentication-gated account mutations.
//
// The package is the public surface. It exposes [Client], [Builder], [Config],
// [Controller], the [Backend] capability interface, and the closed error
// taxonomy the presentation layer is allowed to show. Orchestration details —
// flow functions, audit dispatch — live under internal/ and are never exported.
//
// # Architecture boundaries
//
// The identity backend is an external system of record reached only through
// [Backend]. Two implementations ship with the module: backend/pocketbase
// (a PocketBase users collection over HTTP) and backend/redis (a self-hosted
// backend for development and small deployments). The session store under
// the session package is the single source of truth for "who is signed in
// right now"; no other component keeps its own copy.
//
// # What this package must NOT do
//
//   - Mutate the session store from call results. Session state changes only
//     through the backend's change notifications.
//   - Surface raw backend error text to callers. Backend failures are mapped
//     into the sentinel errors in errors.go; originals go to the audit sink.
//   - Retry failed operations. Retries are user-initiated resubmissions.
package authclient
