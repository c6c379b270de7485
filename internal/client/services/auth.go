// Package services contains application services for the Minutes client.
// This file defines the authentication service: account lifecycle calls,
// sign-in and sign-out, and the small amount of local state they keep.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/client/repositories/meetings"
	"github.com/dmitrijs2005/minutes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
)

// AuthClient is the part of api.Client used by AuthService.
type AuthClient interface {
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, email, password, name string) (string, error)
	Verify(ctx context.Context, email, code string) (string, error)
	ResendCode(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, code, password string) (string, error)
	Logout(ctx context.Context) error
	Token(ctx context.Context) (string, error)
}

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Passwords are passed as byte slices and wiped once the call returns.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	Signup(ctx context.Context, email string, password []byte, name string) (string, error)
	Verify(ctx context.Context, email, code string) (string, error)
	ResendCode(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, code string, password []byte) (string, error)
	// Logout ends the server session and wipes the offline cache.
	Logout(ctx context.Context) error
	// LastEmail returns the email of the last successful sign-in, or "".
	LastEmail(ctx context.Context) (string, error)
	Token(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client   AuthClient
	pinger   Pinger
	metadata metadata.Repository
	cache    meetings.Repository
	logger   logging.Logger
}

func NewAuthService(client AuthClient, pinger Pinger, md metadata.Repository, cache meetings.Repository, logger logging.Logger) AuthService {
	return &authService{
		client:   client,
		pinger:   pinger,
		metadata: md,
		cache:    cache,
		logger:   logger.With("module", "auth_service"),
	}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	last, err := a.LastEmail(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot read last email", "error", err)
	}
	if last != email {
		// cached data belongs to the previous account
		if err := a.cache.Clear(ctx); err != nil {
			a.logger.Warn(ctx, "cannot clear offline cache", "error", err)
		}
	}
	if err := a.metadata.Set(ctx, metadata.KeyLastEmail, email); err != nil {
		a.logger.Warn(ctx, "cannot save last email", "error", err)
	}
	return nil
}

func (a *authService) Signup(ctx context.Context, email string, password []byte, name string) (string, error) {
	defer common.WipeByteArray(password)
	return a.client.Signup(ctx, email, string(password), name)
}

func (a *authService) Verify(ctx context.Context, email, code string) (string, error) {
	return a.client.Verify(ctx, email, code)
}

func (a *authService) ResendCode(ctx context.Context, email string) (string, error) {
	return a.client.ResendCode(ctx, email)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return a.client.ForgotPassword(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, email, code string, password []byte) (string, error) {
	defer common.WipeByteArray(password)
	return a.client.ResetPassword(ctx, email, code, string(password))
}

func (a *authService) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)

	if cerr := a.cache.Clear(ctx); cerr != nil {
		err = errors.Join(err, fmt.Errorf("clear offline cache: %w", cerr))
	}
	if merr := a.metadata.Delete(ctx, metadata.KeyLastSync); merr != nil {
		err = errors.Join(err, merr)
	}
	return err
}

func (a *authService) LastEmail(ctx context.Context) (string, error) {
	email, err := a.metadata.Get(ctx, metadata.KeyLastEmail)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	return email, err
}

func (a *authService) Token(ctx context.Context) (string, error) {
	return a.client.Token(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.pinger.Ping(ctx)
}
