package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/minutes/internal/common"
)

var errEmptyInput = errors.New("empty input")

func (a *App) prompt(label string) (string, error) {
	s, err := getSimpleText(a.reader, label, a.writer())
	if err != nil {
		return "", err
	}
	if s == "" {
		a.out.Error("%s is required", label)
		return "", errEmptyInput
	}
	return s, nil
}

// Signup prompts for email, name and password and creates an account.
func (a *App) Signup(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name (optional)", a.writer())
	if err != nil {
		return err
	}
	password, err := getPassword("Choose password", a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.authService.Signup(ctx, email, password, name)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s", orDefault(msg, "Account created. Check your email for the verification code."))
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	code, err := a.prompt("Verification code")
	if err != nil {
		return err
	}

	msg, err := a.authService.Verify(ctx, email, code)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s", orDefault(msg, "Email verified. You can log in now."))
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	msg, err := a.authService.ResendCode(ctx, email)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s", orDefault(msg, "A new code has been sent."))
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	msg, err := a.authService.ForgotPassword(ctx, email)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s", orDefault(msg, "If the account exists, a reset code has been sent."))
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	code, err := a.prompt("Reset code")
	if err != nil {
		return err
	}
	password, err := getPassword("New password", a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.authService.ResetPassword(ctx, email, code, password)
	if err != nil {
		return a.report(err)
	}
	a.out.Success("%s", orDefault(msg, "Password updated. You can log in now."))
	return nil
}

// Login prompts for credentials, offering the last used email as default,
// and starts the background token refresh on success.
func (a *App) Login(ctx context.Context) error {
	label := "Email"
	last, err := a.authService.LastEmail(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot read last email", "error", err)
	}
	if last != "" {
		label += " [" + last + "]"
	}

	email, err := getSimpleText(a.reader, label, a.writer())
	if err != nil {
		return err
	}
	if email == "" {
		email = last
	}
	if email == "" {
		a.out.Error("Email is required")
		return errEmptyInput
	}

	password, err := getPassword("Password", a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return a.report(err)
	}

	a.startSession(email)
	a.setMode(ModeOnline)
	a.out.Success("Signed in as %s", email)
	return nil
}

// Logout ends the session locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.endSession()

	if err := a.authService.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "logout incomplete", "error", err)
		a.out.Warn("Signed out locally; the server could not be notified.")
		return err
	}
	a.out.Success("Signed out")
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
