package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/dkurov/campdir/internal/idp"
	"github.com/dkurov/campdir/internal/logging"
)

// ErrBusy is returned when an operation is invoked while another one is
// still in flight. The service admits at most one operation at a time so
// overlapping sign-ins cannot race on the session state.
var ErrBusy = errors.New("another authentication operation is in progress")

// Service is the single source of truth for "who is signed in". It is the
// sole writer of the session state; everything else reads snapshots.
type Service struct {
	provider idp.Provider
	log      logging.Logger

	mu      sync.Mutex
	busy    bool
	user    *User
	loading bool
}

// NewService builds a Service whose session starts unresolved: Loading stays
// true until Restore has run.
func NewService(provider idp.Provider, log logging.Logger) *Service {
	return &Service{provider: provider, log: log, loading: true}
}

// Session returns a snapshot of the current state. The snapshot carries a
// copy of the user so callers cannot reach back into the service.
func (s *Service) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Session{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
		snap.Authenticated = true
	}
	return snap
}

// User returns the signed-in user, if any.
func (s *Service) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Loading reports whether the initial session resolution is still pending.
// While true, the session state is not yet authoritative.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether a user is signed in.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Restore resolves the session left over from a previous run. Any failure
// degrades to "unauthenticated": absence of a session is an expected startup
// condition, not an error. Loading is false once Restore returns.
func (s *Service) Restore(ctx context.Context) {
	if err := s.begin(); err != nil {
		return
	}
	defer s.end()

	s.resolve(ctx)
}

// SignIn authenticates against the provider and re-resolves the identity the
// same way Restore does. On failure the session state is left untouched and
// the provider's error is returned for display.
func (s *Service) SignIn(ctx context.Context, username, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.provider.SignIn(ctx, username, password); err != nil {
		s.log.Debug(ctx, "sign in rejected", "user", username, "err", err)
		return err
	}
	s.resolve(ctx)
	s.log.Info(ctx, "signed in", "user", username)
	return nil
}

// SignUp registers a new account. Registration does not establish a session;
// a confirmation step is required first.
func (s *Service) SignUp(ctx context.Context, username, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.provider.SignUp(ctx, username, email, password)
}

// ConfirmSignUp completes a registration with the emailed code. The session
// state is unchanged.
func (s *Service) ConfirmSignUp(ctx context.Context, username, code string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.provider.ConfirmSignUp(ctx, username, code)
}

// RequestPasswordReset asks the provider to dispatch a reset code.
func (s *Service) RequestPasswordReset(ctx context.Context, username string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.provider.RequestPasswordReset(ctx, username)
}

// ConfirmPasswordReset sets a new password using the emailed reset code.
func (s *Service) ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.provider.ConfirmPasswordReset(ctx, username, code, newPassword)
}

// SignOut revokes the session with the provider and clears the local user
// unconditionally: once a sign-out was requested, local state must never
// still claim authentication, whatever the provider said.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	err := s.provider.SignOut(ctx)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "provider sign-out failed, local session cleared anyway", "err", err)
		return err
	}
	s.log.Info(ctx, "signed out")
	return nil
}

// resolve queries the provider for the current identity and session claims
// and installs the result. Either both lookups succeed and the user is fully
// populated, or the user is cleared; a partial session is never stored.
func (s *Service) resolve(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	ident, err := s.provider.CurrentIdentity(ctx)
	if err != nil {
		s.log.Debug(ctx, "no current session", "err", err)
		s.setUser(nil)
		return
	}
	sess, err := s.provider.Session(ctx)
	if err != nil {
		s.log.Debug(ctx, "session claims unavailable", "err", err)
		s.setUser(nil)
		return
	}

	s.setUser(&User{
		UserID:   ident.UserID,
		Username: ident.Username,
		Email:    sess.Email,
	})
}

func (s *Service) setUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// begin admits the caller as the single in-flight operation.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
