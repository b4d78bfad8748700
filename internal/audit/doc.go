// Package audit is the diagnostic channel: the only place where raw backend
// failure text is recorded. Events flow through an asynchronous dispatcher
// into a caller-supplied sink; nothing here ever reaches the presentation
// layer.
//
// # What this package must NOT do
//
//   - Import the root package (no upward imports).
//   - Block an authentication flow. Emit either buffers, drops, or yields to
//     ctx — it never waits on a slow sink when DropIfFull is set.
package audit
