// Package pocketbase implements the identity backend against a PocketBase
// server's records API.
//
// The adapter speaks the collection auth endpoints (auth-with-password,
// auth-with-oauth2, auth-refresh, request-password-reset) and the records
// CRUD endpoints for registration, password change, and account deletion. It
// holds the auth token in memory only; callers wanting persistence read
// [Backend.Token] and pass it to [Backend.Restore] on the next start.
//
// Session changes are published through an internal notifier, so the core's
// session store observes exactly what this adapter considers current —
// including the automatic drop to anonymous when the token expires.
package pocketbase
