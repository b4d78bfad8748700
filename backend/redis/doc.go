// Package redis implements a self-contained identity backend on Redis, for
// deployments that want the full flow without a PocketBase server: account
// records live in hashes, passwords as argon2id PHC strings, sessions as
// signed HS256 tokens, and reset tokens as hashed short-lived keys.
//
// The adapter publishes session changes through the same notifier contract
// as the PocketBase backend, so the core treats both identically.
package redis
