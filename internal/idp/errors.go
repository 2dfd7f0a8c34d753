package idp

import "errors"

var (
	// Session state.
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")

	// Provider rejections, matched with errors.Is.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidCode        = errors.New("invalid confirmation code")
	ErrCodeExpired        = errors.New("confirmation code expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotConfirmed   = errors.New("user not confirmed")
)
