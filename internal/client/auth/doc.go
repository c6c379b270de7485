// Package auth manages the client-side access-token lifecycle.
//
// # Overview
//
// The package provides:
//  1. TokenCache, a session-scoped store of one access token and its absolute
//     expiry, kept in a SessionStorage as two string entries (the token and
//     the expiry in epoch milliseconds).
//  2. Provider, the single entry point for obtaining a token. EnsureToken
//     returns the cached token while it is valid and otherwise asks the
//     backend refresh endpoint for a new one. Concurrent callers share one
//     in-flight refresh.
//  3. Transport and Fetcher, which attach "Authorization: Bearer <token>" to
//     outgoing HTTP requests and fail with *AuthenticationError, without
//     touching the network, when no token can be obtained.
//  4. KeepAlive, a start/stop-bound timer that calls EnsureToken on a fixed
//     interval so interactive actions rarely find an expired token.
//
// # Error Handling
//
// A cache miss is not an error. A rejected refresh yields *RefreshError,
// which matches ErrUnauthenticated with errors.Is; the Provider also notifies
// its Redirector once per rejected refresh so the presentation layer can send
// the user to the login entry point. Transport failures are returned as-is.
package auth
