// Package cli provides the interactive campdir command-line client.
//
// It wires configuration, the Cognito identity provider, the session
// manager, the GraphQL request client, and an interactive REPL for browsing
// and managing business listings. Typical flow: restore the previous
// session, show the prompt, and execute user commands.
//
// Key features:
//   - Sign in / Sign out
//   - Sign up with email confirmation, including a resumable pending step
//   - Password reset via emailed code
//   - List / Show / Add business listings
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, NewApp, and runREPL for details.
package cli
