package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minutes/internal/client/auth"
)

var (
	errMissingToken     = errors.New("api: login response without access token")
	errInvalidExpiresIn = errors.New("api: login response with invalid expiresIn")
)

type authReply struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	ExpiresIn   int64  `json:"expiresIn,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Login signs in and seeds the token cache with the returned access token.
// The refresh cookie is kept in the client's cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out authReply
	if err := c.post(ctx, "/auth/login", credentials{Email: email, Password: password}, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errMissingToken
	}
	if !auth.ValidExpiresIn(out.ExpiresIn) {
		return fmt.Errorf("%w: %d", errInvalidExpiresIn, out.ExpiresIn)
	}
	c.tokens.Seed(out.AccessToken, time.Duration(out.ExpiresIn)*time.Second)
	c.logger.Info(ctx, "signed in", "expires_in", out.ExpiresIn)
	return nil
}

// Signup creates an account; a verification code is emailed.
func (c *Client) Signup(ctx context.Context, email, password, name string) (string, error) {
	return c.message(ctx, "/auth/signup", credentials{Email: email, Password: password, Name: name})
}

func (c *Client) Verify(ctx context.Context, email, code string) (string, error) {
	return c.message(ctx, "/auth/verify", credentials{Email: email, Code: code})
}

func (c *Client) ResendCode(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "/auth/resend-code", credentials{Email: email})
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "/auth/forgot-password", credentials{Email: email})
}

func (c *Client) ResetPassword(ctx context.Context, email, code, password string) (string, error) {
	return c.message(ctx, "/auth/reset-password", credentials{Email: email, Code: code, Password: password})
}

// Logout revokes the refresh session on the server and always forgets the
// local token, even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.SignOut()
	return c.post(ctx, "/auth/logout", nil, nil)
}

func (c *Client) message(ctx context.Context, path string, in credentials) (string, error) {
	var out authReply
	if err := c.post(ctx, path, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
