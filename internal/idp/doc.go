// Package idp defines the identity-provider port consumed by the session
// layer, plus the Amazon Cognito implementation of it.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic capability contract (see Provider) covering the
//     full authentication lifecycle: sign-in, registration with email
//     confirmation, password reset, sign-out, and resolution of the current
//     identity and session credential.
//  2. A concrete Cognito user-pool adapter (see CognitoProvider) that caches
//     the issued token set, transparently refreshes expired tokens, and maps
//     Cognito exception types to sentinel errors.
//
// # Error Handling
//
// Common rejections are exposed as sentinel errors matched with errors.Is:
// ErrNoSession, ErrSessionExpired, ErrInvalidCredentials, ErrUsernameTaken,
// ErrWeakPassword, ErrInvalidCode, ErrCodeExpired, ErrUserNotFound,
// ErrUserNotConfirmed. The provider's own message is preserved via wrapping
// so it can be shown to the user verbatim.
//
// All operations accept context.Context and honor cancellation/timeouts.
package idp
