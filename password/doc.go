// Package password provides the client-side strength policy and the argon2id
// hasher used by the self-hosted Redis backend.
//
// ValidatePolicy is pure and deterministic; callers re-run it on every
// submission attempt rather than caching a verdict, since the password value
// can change between attempts.
package password
