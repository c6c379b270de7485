// Package mail sends the account emails (verification and password reset
// codes). Services depend on Mailer, not on a provider.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/resend/resend-go/v3"
)

type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, to, code string, ttl time.Duration) error
}

// emailSender is the part of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendMailer struct {
	emails emailSender
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{emails: resend.NewClient(apiKey).Emails, from: from}
}

func (m *ResendMailer) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, "Your Minutes verification code", codeBody("Confirm your email address", code, ttl))
}

func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, "Reset your Minutes password", codeBody("Use this code to choose a new password", code, ttl))
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	_, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func codeBody(intro, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;">
  <p>%s:</p>
  <p style="font-size:24px;font-weight:600;letter-spacing:4px;">%s</p>
  <p style="color:#64748b;font-size:13px;">The code expires in %s. If you did not ask for it, ignore this email.</p>
</body>
</html>`, intro, code, ttl.Round(time.Minute))
}

// LogMailer writes codes to the log instead of sending them. It is used when
// no Resend API key is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mail")}
}

func (m *LogMailer) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	m.logger.Info(ctx, "verification code", "to", to, "code", code, "ttl", ttl)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, code string, ttl time.Duration) error {
	m.logger.Info(ctx, "password reset code", "to", to, "code", code, "ttl", ttl)
	return nil
}

// New picks the Resend mailer when apiKey is set and the log mailer otherwise.
func New(apiKey, from string, l logging.Logger) Mailer {
	if apiKey == "" {
		return NewLogMailer(l)
	}
	return NewResendMailer(apiKey, from)
}
