package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	got []*resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, p *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = append(f.got, p)
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg-1"}, nil
}

func TestResendMailer_Send(t *testing.T) {
	fs := &fakeSender{}
	m := &ResendMailer{emails: fs, from: "Minutes <noreply@example.com>"}

	require.NoError(t, m.SendVerificationCode(context.Background(), "ann@example.com", "123456", 15*time.Minute))
	require.NoError(t, m.SendPasswordReset(context.Background(), "ann@example.com", "654321", 10*time.Minute))

	require.Len(t, fs.got, 2)
	assert.Equal(t, "Minutes <noreply@example.com>", fs.got[0].From)
	assert.Equal(t, []string{"ann@example.com"}, fs.got[0].To)
	assert.Contains(t, fs.got[0].Subject, "verification")
	assert.Contains(t, fs.got[0].Html, "123456")
	assert.Contains(t, fs.got[0].Html, "15m0s")
	assert.Contains(t, fs.got[1].Subject, "Reset")
	assert.Contains(t, fs.got[1].Html, "654321")
}

func TestResendMailer_Error(t *testing.T) {
	boom := errors.New("rate limited")
	m := &ResendMailer{emails: &fakeSender{err: boom}, from: "x@example.com"}

	err := m.SendVerificationCode(context.Background(), "ann@example.com", "1", time.Minute)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to send email")
}

func TestNew_PicksImplementation(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New("", "x@example.com", logging.Discard()))
	assert.IsType(t, &ResendMailer{}, New("re_123", "x@example.com", logging.Discard()))
}

func TestLogMailer_LogsCode(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.New(&buf, "text", "info"))

	require.NoError(t, m.SendVerificationCode(context.Background(), "ann@example.com", "123456", time.Minute))
	require.NoError(t, m.SendPasswordReset(context.Background(), "ann@example.com", "999999", time.Minute))

	out := buf.String()
	assert.Contains(t, out, "code=123456")
	assert.Contains(t, out, "code=999999")
	assert.Contains(t, out, "module=mail")
}
