// Package auth owns the client's session state and its lifecycle:
// restoration at startup, sign-in/out, registration with email confirmation,
// and password reset. The Service is the only writer of the state; other
// components read point-in-time snapshots via Session.
//
// Operations are serialized by an internal busy guard: at most one is in
// flight at a time and a concurrent call fails fast with ErrBusy, so two
// overlapping sign-ins can never leave the session inconsistent.
package auth
