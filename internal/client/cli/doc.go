// Package cli provides the interactive Minutes command-line client.
//
// It wires configuration, the local cache, the API client and an interactive
// REPL. The REPL is the presentation layer of the token lifecycle: after
// login a KeepAlive keeps the access token fresh in the background, and when
// the session can no longer be refreshed the App drops back to the signed-out
// state and asks the user to log in again.
//
// Key features:
//   - Account lifecycle: signup, verify, resend, forgot, reset
//   - Login / Logout
//   - Meetings, summaries, transcripts and tasks, with an offline cache
//   - Integrations, automations and account details
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
