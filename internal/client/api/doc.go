// Package api is the Minutes HTTP API client.
//
// Unauthenticated calls (/auth/*) go through a plain http.Client with a
// cookie jar, so the refresh cookie set by login is replayed on refresh and
// logout. Data calls (/api/*) go through auth.Fetcher and carry the bearer
// token maintained by auth.Provider.
//
// Errors are classified with the sentinels in errors.go; callers use
// errors.Is to tell "sign in again" from "server unreachable".
package api
