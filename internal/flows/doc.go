// Package flows contains pure-function orchestrators for every Client
// operation.
//
// Each flow function (RunSubmit, RunSocialSignIn, RunPasswordReset,
// RunChangePassword, RunDeleteAccount) accepts a typed dependency struct and
// returns results without side effects beyond those dependencies. This keeps
// the Client type thin and makes every ordering rule — validation before the
// backend call, reauthentication before the mutation — unit-testable with
// counting stubs.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the backend adapter, audit dispatcher,
// and metrics. They do NOT own any of these resources, and they never touch
// the session store: session state changes only through the backend's own
// change notifications.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package (sentinel errors are injected instead).
//   - Perform I/O directly — all I/O is mediated through dependency fields.
package flows
