package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/dmitrijs2005/minutes/internal/server/auth"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCode = "123456"

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager, m *fakeMailer) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:           "k",
		AccessTokenTTL:      time.Minute,
		RefreshTokenTTL:     24 * time.Hour,
		VerificationCodeTTL: 15 * time.Minute,
	}
	s := NewUserService(db, rm, m, logging.Discard(), cfg)
	s.makeCode = func(int) (string, error) { return testCode, nil }
	return s
}

// signupVerified creates a verified account through the service.
func signupVerified(t *testing.T, s *UserService, mock sqlmock.Sqlmock, email, password string) {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), email, []byte(password), "Ann"))

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Verify(context.Background(), email, testCode))
}

func TestUserService_SignupSendsCode(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm, m := newFakeRepoManager(), &fakeMailer{}
	s := newUserService(t, db, rm, m)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := s.Signup(context.Background(), "  Ann@Example.com ", []byte("secret"), " Ann ")
	require.NoError(t, err)

	u, err := rm.users.GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.False(t, u.Verified)
	assert.NotEqual(t, []byte("secret"), u.PasswordHash)

	require.Len(t, m.sent, 1)
	assert.Equal(t, sentMail{kind: "verify", to: "ann@example.com", code: testCode}, m.sent[0])

	c, err := rm.codes.Find(context.Background(), u.ID, models.CodeVerify)
	require.NoError(t, err)
	assert.Equal(t, auth.HashToken(testCode), c.CodeHash)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SignupDuplicate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm, m := newFakeRepoManager(), &fakeMailer{}
	s := newUserService(t, db, rm, m)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann"))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := s.Signup(context.Background(), "ANN@example.com", []byte("pw"), "Ann")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Len(t, m.sent, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_LoginRequiresVerifiedAccount(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann"))

	_, err := s.Login(context.Background(), "ann@example.com", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorNotVerified)
	assert.Zero(t, rm.tokens.count())
}

func TestUserService_VerifyWrongCodeCountsAttempts(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann"))

	for i := 0; i < maxCodeAttempts; i++ {
		err := s.Verify(context.Background(), "ann@example.com", "000000")
		require.ErrorIs(t, err, common.ErrorInvalidCode)
	}

	// Locked out even with the right code.
	err := s.Verify(context.Background(), "ann@example.com", testCode)
	require.ErrorIs(t, err, common.ErrorInvalidCode)

	u, _ := rm.users.GetByEmail(context.Background(), "ann@example.com")
	assert.False(t, u.Verified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_VerifyExpiredCode(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann"))

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	err := s.Verify(context.Background(), "ann@example.com", testCode)
	require.ErrorIs(t, err, common.ErrorInvalidCode)
}

func TestUserService_VerifyUnknownAndAlreadyVerified(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})

	err := s.Verify(context.Background(), "nobody@example.com", testCode)
	require.ErrorIs(t, err, common.ErrorInvalidCode)

	signupVerified(t, s, mock, "ann@example.com", "pw")

	err = s.Verify(context.Background(), "ann@example.com", testCode)
	require.ErrorIs(t, err, common.ErrorAlreadyVerified)

	err = s.ResendCode(context.Background(), "ann@example.com")
	require.ErrorIs(t, err, common.ErrorAlreadyVerified)
}

func TestUserService_ResendCodeUnknownEmailIsSilent(t *testing.T) {
	db, _ := newSQLMockDB(t)
	m := &fakeMailer{}
	s := newUserService(t, db, newFakeRepoManager(), m)

	require.NoError(t, s.ResendCode(context.Background(), "nobody@example.com"))
	require.NoError(t, s.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, m.sent)
}

func TestUserService_ResendCodeResetsAttempts(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm, m := newFakeRepoManager(), &fakeMailer{}
	s := newUserService(t, db, rm, m)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann"))
	require.ErrorIs(t, s.Verify(context.Background(), "ann@example.com", "000000"), common.ErrorInvalidCode)

	require.NoError(t, s.ResendCode(context.Background(), "ann@example.com"))
	assert.Len(t, m.sent, 2)

	u, _ := rm.users.GetByEmail(context.Background(), "ann@example.com")
	c, err := rm.codes.Find(context.Background(), u.ID, models.CodeVerify)
	require.NoError(t, err)
	assert.Zero(t, c.Attempts)
}

func TestUserService_LoginIssuesTokenPair(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	pair, err := s.Login(context.Background(), "Ann@Example.com", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)

	u, _ := rm.users.GetByEmail(context.Background(), "ann@example.com")
	id, err := s.UserIDFromAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	stored, err := rm.tokens.Find(context.Background(), auth.HashToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.UserID)

	// The raw refresh token is never stored.
	_, err = rm.tokens.Find(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_LoginRejectsBadCredentials(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ann@example.com", "nope"},
		{"unknown email", "bob@example.com", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(context.Background(), tt.email, []byte(tt.password))
			require.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}

	rm.users.getErr = errors.New("db down")
	_, err := s.Login(context.Background(), "ann@example.com", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestUserService_Refresh(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	pair, err := s.Login(context.Background(), "ann@example.com", []byte("pw"))
	require.NoError(t, err)

	at, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, at.ExpiresIn)

	id, err := s.UserIDFromAccessToken(at.Token)
	require.NoError(t, err)
	u, _ := rm.users.GetByEmail(context.Background(), "ann@example.com")
	assert.Equal(t, u.ID, id)

	// The refresh session is not rotated.
	assert.Equal(t, 1, rm.tokens.count())
}

func TestUserService_RefreshRejected(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	_, err := s.Refresh(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Refresh(context.Background(), "unknown")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	pair, err := s.Login(context.Background(), "ann@example.com", []byte("pw"))
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Zero(t, rm.tokens.count(), "expired session is removed")
}

func TestUserService_Logout(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	pair, err := s.Login(context.Background(), "ann@example.com", []byte("pw"))
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), pair.RefreshToken))
	assert.Zero(t, rm.tokens.count())

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	require.NoError(t, s.Logout(context.Background(), ""))
	require.NoError(t, s.Logout(context.Background(), "already-gone"))
}

func TestUserService_ResetPasswordRevokesSessions(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm, m := newFakeRepoManager(), &fakeMailer{}
	s := newUserService(t, db, rm, m)
	signupVerified(t, s, mock, "ann@example.com", "old")

	_, err := s.Login(context.Background(), "ann@example.com", []byte("old"))
	require.NoError(t, err)
	_, err = s.Login(context.Background(), "ann@example.com", []byte("old"))
	require.NoError(t, err)
	require.Equal(t, 2, rm.tokens.count())

	require.NoError(t, s.ForgotPassword(context.Background(), "ann@example.com"))
	require.Equal(t, "reset", m.sent[len(m.sent)-1].kind)

	err = s.ResetPassword(context.Background(), "ann@example.com", "999999", []byte("new"))
	require.ErrorIs(t, err, common.ErrorInvalidCode)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.ResetPassword(context.Background(), "ann@example.com", testCode, []byte("new")))
	assert.Zero(t, rm.tokens.count())

	_, err = s.Login(context.Background(), "ann@example.com", []byte("old"))
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Login(context.Background(), "ann@example.com", []byte("new"))
	require.NoError(t, err)

	// The reset code is single use.
	err = s.ResetPassword(context.Background(), "ann@example.com", testCode, []byte("again"))
	require.ErrorIs(t, err, common.ErrorInvalidCode)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Account(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm, &fakeMailer{})
	signupVerified(t, s, mock, "ann@example.com", "pw")

	u, _ := rm.users.GetByEmail(context.Background(), "ann@example.com")
	acc, err := s.Account(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", acc.Email)
	assert.Equal(t, "Ann", acc.Name)
	assert.True(t, acc.Verified)

	_, err = s.Account(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_SignupMailError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	m := &fakeMailer{err: errors.New("smtp down")}
	s := newUserService(t, db, newFakeRepoManager(), m)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := s.Signup(context.Background(), "ann@example.com", []byte("pw"), "Ann")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}
