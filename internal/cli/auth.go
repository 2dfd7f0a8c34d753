package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dkurov/campdir/internal/flow"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignIn prompts for credentials and establishes a session. The provider's
// rejection message is shown verbatim on failure; the password buffer is
// wiped before returning.
func (a *App) SignIn(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.auth.SignIn(ctx, username, string(password)); err != nil {
		printlnFn("Sign in failed:", err.Error())
		return err
	}

	printlnFn("Successfully signed in!")
	return nil
}

// SignUp collects the registration form and submits it through the flow
// controller. A password/confirmation mismatch is rejected locally before
// anything reaches the provider.
func (a *App) SignUp(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter your email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Create a password")
	if err != nil {
		return err
	}
	defer wipe(password)
	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if err := a.flow.SubmitSignUp(ctx, username, email, string(password), string(confirm)); err != nil {
		printlnFn("Sign up failed:", err.Error())
		return err
	}

	printlnFn("Account created! Check your email for the confirmation code, then run 'confirm'.")
	return nil
}

// Confirm completes a pending registration with the emailed code.
func (a *App) Confirm(ctx context.Context) error {
	pending := a.flow.PendingUsername()
	if pending == "" {
		printlnFn("No registration awaiting confirmation. Run 'signup' first.")
		return flow.ErrNoPendingSignUp
	}

	code, err := getSimpleText(a.reader, "Enter the confirmation code for "+pending, os.Stdout)
	if err != nil {
		return err
	}

	if err := a.flow.ConfirmSignUp(ctx, pending, code); err != nil {
		printlnFn("Confirmation failed:", err.Error())
		return err
	}

	printlnFn("Email confirmed! You can now sign in.")
	return nil
}

// Forgot requests a password reset code for the given username.
func (a *App) Forgot(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter your username", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.flow.SubmitResetRequest(ctx, username); err != nil {
		printlnFn("Could not send reset code:", err.Error())
		return err
	}

	printlnFn("Reset code sent to your email. Run 'reset' to set a new password.")
	return nil
}

// Reset completes a password reset with the emailed code and a new password.
func (a *App) Reset(ctx context.Context) error {
	if a.flow.PasswordResetStep() != flow.ResetStepReset {
		printlnFn("No password reset in progress. Run 'forgot' first.")
		return flow.ErrNoPendingReset
	}

	code, err := getSimpleText(a.reader, "Enter the reset code from your email", os.Stdout)
	if err != nil {
		return err
	}
	newPassword, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer wipe(newPassword)

	if err := a.flow.SubmitNewPassword(ctx, code, string(newPassword)); err != nil {
		printlnFn("Password reset failed:", err.Error())
		return err
	}

	printlnFn("Password reset successful! You can now sign in.")
	return nil
}

// Cancel abandons any pending sign-up confirmation or password reset,
// discarding staged data without contacting the provider.
func (a *App) Cancel(ctx context.Context) error {
	a.flow.CancelSignUp()
	a.flow.CancelPasswordReset()
	printlnFn("Pending flows cancelled.")
	return nil
}

// WhoAmI prints the current session state.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.auth.Session()
	switch {
	case snap.Loading:
		printlnFn("Session state not resolved yet.")
	case !snap.Authenticated:
		printlnFn("Not signed in.")
	default:
		line := fmt.Sprintf("Signed in as %s (id %s", snap.User.Username, snap.User.UserID)
		if snap.User.Email != "" {
			line += ", " + snap.User.Email
		}
		printlnFn(line + ")")
	}
	return nil
}

// SignOut ends the session. The local session is cleared even when the
// provider call fails.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		printlnFn("Provider sign-out reported:", err.Error())
		printlnFn("Local session cleared.")
		return err
	}
	printlnFn("Signed out.")
	return nil
}
