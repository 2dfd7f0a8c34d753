// Package flow sequences the multi-step registration and password-reset
// protocols as an explicit state machine over UI-visible steps, independent
// of how those steps are rendered.
//
// A failed step leaves the machine where it was; the user may retry any
// number of times. Cancellation discards staged data without contacting the
// identity provider.
package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/dkurov/campdir/internal/logging"
)

// SessionOps is the slice of the session layer the controller drives.
type SessionOps interface {
	SignUp(ctx context.Context, username, email, password string) error
	ConfirmSignUp(ctx context.Context, username, code string) error
	RequestPasswordReset(ctx context.Context, username string) error
	ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error
}

// RegStep names a registration state.
type RegStep string

const (
	RegStepIdle                 RegStep = "idle"
	RegStepAwaitingConfirmation RegStep = "awaiting-confirmation"
)

// ResetStep names a password-reset state.
type ResetStep string

const (
	ResetStepRequest ResetStep = "request"
	ResetStepReset   ResetStep = "reset"
)

var (
	// ErrPasswordMismatch is a purely local rejection: the provider is
	// never contacted when the two password fields differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	ErrNoPendingSignUp  = errors.New("no registration awaiting confirmation")
	ErrUsernameMismatch = errors.New("confirmation must target the pending registration")
	ErrNoPendingReset   = errors.New("no password reset in progress")
)

// pendingReset is the data staged between the request and reset steps.
type pendingReset struct {
	username    string
	code        string
	newPassword string
}

// Controller is the finite state machine behind the sign-up and
// password-reset dialogs.
type Controller struct {
	ops SessionOps
	log logging.Logger

	mu              sync.Mutex
	regStep         RegStep
	pendingUsername string
	resetStep       ResetStep
	reset           pendingReset
}

func NewController(ops SessionOps, log logging.Logger) *Controller {
	return &Controller{
		ops:       ops,
		log:       log,
		regStep:   RegStepIdle,
		resetStep: ResetStepRequest,
	}
}

// RegistrationStep reports the current registration state.
func (c *Controller) RegistrationStep() RegStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regStep
}

// PendingUsername returns the username recorded by a successful sign-up
// submission, or "" when no registration is awaiting confirmation.
func (c *Controller) PendingUsername() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingUsername
}

// PasswordResetStep reports the current reset state.
func (c *Controller) PasswordResetStep() ResetStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetStep
}

// SubmitSignUp validates the form locally and registers the account. On
// success the submitted username becomes the pending registration and the
// machine moves to awaiting-confirmation.
func (c *Controller) SubmitSignUp(ctx context.Context, username, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	if err := c.ops.SignUp(ctx, username, email, password); err != nil {
		return err
	}

	c.mu.Lock()
	c.regStep = RegStepAwaitingConfirmation
	c.pendingUsername = username
	c.mu.Unlock()

	c.log.Info(ctx, "registration submitted, confirmation pending", "user", username)
	return nil
}

// ConfirmSignUp completes the pending registration. The username must match
// the one recorded at sign-up; confirming an arbitrary account through a
// pending flow is not allowed. Success clears the pending registration and
// returns the machine to idle.
func (c *Controller) ConfirmSignUp(ctx context.Context, username, code string) error {
	c.mu.Lock()
	if c.regStep != RegStepAwaitingConfirmation {
		c.mu.Unlock()
		return ErrNoPendingSignUp
	}
	if username != c.pendingUsername {
		c.mu.Unlock()
		return ErrUsernameMismatch
	}
	c.mu.Unlock()

	if err := c.ops.ConfirmSignUp(ctx, username, code); err != nil {
		return err
	}

	c.mu.Lock()
	c.regStep = RegStepIdle
	c.pendingUsername = ""
	c.mu.Unlock()

	c.log.Info(ctx, "registration confirmed", "user", username)
	return nil
}

// CancelSignUp abandons a pending registration without contacting the
// provider. The account stays unconfirmed server-side.
func (c *Controller) CancelSignUp() {
	c.mu.Lock()
	c.regStep = RegStepIdle
	c.pendingUsername = ""
	c.mu.Unlock()
}

// SubmitResetRequest asks the provider to dispatch a reset code. On success
// the target username is staged and the machine moves to the reset step.
func (c *Controller) SubmitResetRequest(ctx context.Context, username string) error {
	if err := c.ops.RequestPasswordReset(ctx, username); err != nil {
		return err
	}

	c.mu.Lock()
	c.resetStep = ResetStepReset
	c.reset = pendingReset{username: username}
	c.mu.Unlock()

	c.log.Info(ctx, "password reset code requested", "user", username)
	return nil
}

// SubmitNewPassword completes the reset using exactly the staged username
// with the given code and password. Success clears the staged fields and
// reverts the step to request.
func (c *Controller) SubmitNewPassword(ctx context.Context, code, newPassword string) error {
	c.mu.Lock()
	if c.resetStep != ResetStepReset || c.reset.username == "" {
		c.mu.Unlock()
		return ErrNoPendingReset
	}
	c.reset.code = code
	c.reset.newPassword = newPassword
	staged := c.reset
	c.mu.Unlock()

	if err := c.ops.ConfirmPasswordReset(ctx, staged.username, staged.code, staged.newPassword); err != nil {
		return err
	}

	c.mu.Lock()
	c.resetStep = ResetStepRequest
	c.reset = pendingReset{}
	c.mu.Unlock()

	c.log.Info(ctx, "password reset completed", "user", staged.username)
	return nil
}

// CancelPasswordReset discards staged fields and returns to the request
// step. A dispatched code is not revoked; it stays valid until it expires.
func (c *Controller) CancelPasswordReset() {
	c.mu.Lock()
	c.resetStep = ResetStepRequest
	c.reset = pendingReset{}
	c.mu.Unlock()
}
