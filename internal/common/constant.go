// Package common contains shared constants, helpers and sentinel errors used
// across the Minutes client and server.
package common

// AuthorizationHeader carries the bearer access token on API requests.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// RefreshCookieName is the cookie holding the opaque refresh token. It is
// scoped to the /auth path so it is only sent to the auth endpoints.
const (
	RefreshCookieName = "minutes_refresh"
	RefreshCookiePath = "/auth"
)

// LoginPath is where an unauthenticated user agent is sent.
const LoginPath = "/login"
