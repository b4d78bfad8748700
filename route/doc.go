// Package route decides navigation from session state.
//
// A Guard classifies the screen the user is on (Protected or PublicOnly) and
// issues at most one redirect per evaluation: unauthenticated users leave
// protected screens for the anonymous entry point, authenticated users leave
// public-only screens for the authenticated one. It never inspects
// credentials and never talks to the backend; the session store is its only
// input.
package route
