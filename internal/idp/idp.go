package idp

import "context"

// Identity is the provider's view of the signed-in user.
type Identity struct {
	UserID   string
	Username string
}

// SessionInfo carries the bearer token for outbound API calls plus the
// optional email claim extracted from it.
type SessionInfo struct {
	Token string
	Email string
}

// Provider is the capability surface the client consumes from the identity
// provider. Implementations own credential storage and token refresh; callers
// only observe the results.
//
// Failures are reported through the sentinel errors in this package, wrapped
// so the provider's own message stays visible to the user.
type Provider interface {
	// CurrentIdentity resolves the identity of the signed-in user, or
	// ErrNoSession when nobody is signed in.
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// Session returns a live session token suitable for authenticating data
	// requests. ErrNoSession when signed out, ErrSessionExpired when the
	// session could not be kept alive.
	Session(ctx context.Context) (*SessionInfo, error)

	// SignIn establishes a session from username/password credentials.
	SignIn(ctx context.Context, username, password string) error

	// SignUp registers a new, unconfirmed account with an email attribute.
	SignUp(ctx context.Context, username, email, password string) error

	// ConfirmSignUp completes registration with an emailed confirmation code.
	ConfirmSignUp(ctx context.Context, username, code string) error

	// RequestPasswordReset dispatches a reset code to the account's email.
	RequestPasswordReset(ctx context.Context, username string) error

	// ConfirmPasswordReset sets a new password using the emailed reset code.
	ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error

	// SignOut revokes the session. Best-effort: callers clear local state
	// regardless of the outcome.
	SignOut(ctx context.Context) error
}
