// Package services contains server-side business logic. This file implements
// UserService: account signup with emailed verification codes, password
// reset, login issuing an access token plus a server-stored refresh session,
// refresh and logout.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/logging"
	apimodels "github.com/dmitrijs2005/minutes/internal/models"
	"github.com/dmitrijs2005/minutes/internal/server/auth"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/mail"
	"github.com/dmitrijs2005/minutes/internal/server/models"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/repomanager"
)

const (
	codeDigits      = 6
	maxCodeAttempts = 5
)

// TokenPair bundles a short-lived access token and the opaque refresh token
// that goes into the refresh cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AccessToken is what a refresh returns. The refresh cookie is not rotated.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mail.Mailer
	logger      logging.Logger

	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	codeTTL         time.Duration

	now      func() time.Time
	makeCode func(n int) (string, error)
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:              db,
		repomanager:     m,
		mailer:          mailer,
		logger:          l.With("module", "users"),
		jwtSecret:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		codeTTL:         cfg.VerificationCodeTTL,
		now:             time.Now,
		makeCode:        common.MakeRandDigits,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified account and emails a verification code.
func (s *UserService) Signup(ctx context.Context, email string, password []byte, name string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: normalizeEmail(email), Name: strings.TrimSpace(name), PasswordHash: hash}

	var code string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		code, err = s.issueCode(ctx, tx, u.ID, models.CodeVerify)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "account created", "email", user.Email)
	return s.mailer.SendVerificationCode(ctx, user.Email, code, s.codeTTL)
}

// Verify marks the account verified when code matches the pending one.
func (s *UserService) Verify(ctx context.Context, email, code string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidCode
		}
		return fmt.Errorf("error loading user: %w", err)
	}
	if user.Verified {
		return common.ErrorAlreadyVerified
	}

	if err := s.checkCode(ctx, user.ID, models.CodeVerify, code); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).MarkVerified(ctx, user.ID); err != nil {
			return fmt.Errorf("error verifying user: %w", err)
		}
		return s.repomanager.Codes(tx).Delete(ctx, user.ID, models.CodeVerify)
	})
}

// ResendCode issues a fresh verification code. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *UserService) ResendCode(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}
	if user.Verified {
		return common.ErrorAlreadyVerified
	}

	code, err := s.issueCode(ctx, s.db, user.ID, models.CodeVerify)
	if err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(ctx, user.Email, code, s.codeTTL)
}

// ForgotPassword emails a reset code. Unknown addresses succeed silently.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	code, err := s.issueCode(ctx, s.db, user.ID, models.CodeReset)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, code, s.codeTTL)
}

// ResetPassword sets a new password and revokes every refresh session of the user.
func (s *UserService) ResetPassword(ctx context.Context, email, code string, password []byte) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidCode
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := s.checkCode(ctx, user.ID, models.CodeReset, code); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repomanager.Codes(tx).Delete(ctx, user.ID, models.CodeReset); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteForUser(ctx, user.ID)
	})
}

// Login verifies credentials and, for verified accounts, opens a refresh
// session and returns a TokenPair.
func (s *UserService) Login(ctx context.Context, email string, password []byte) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if !user.Verified {
		return nil, common.ErrorNotVerified
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// Refresh exchanges a valid refresh token for a new access token. Expired
// sessions are removed and yield common.ErrRefreshTokenExpired.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	if refreshToken == "" {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.RefreshTokens(s.db)
	hash := auth.HashToken(refreshToken)

	token, err := repo.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if !s.now().Before(token.Expires) {
		if err := repo.Delete(ctx, hash); err != nil {
			s.logger.Warn(ctx, "cannot delete expired refresh token", "error", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	access, err := auth.GenerateToken(token.UserID, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AccessToken{Token: access, ExpiresIn: s.accessTokenTTL}, nil
}

// Logout revokes the refresh session. An empty or unknown token is not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, auth.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Account returns the public profile of userID.
func (s *UserService) Account(ctx context.Context, userID string) (*apimodels.Account, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &apimodels.Account{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}, nil
}

// UserIDFromAccessToken validates a bearer token.
func (s *UserService) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// --- helpers below ---

func (s *UserService) issueCode(ctx context.Context, db dbx.DBTX, userID string, purpose models.CodePurpose) (string, error) {
	code, err := s.makeCode(codeDigits)
	if err != nil {
		return "", fmt.Errorf("error generating code: %w", err)
	}
	err = s.repomanager.Codes(db).Save(ctx, &models.Code{
		UserID:   userID,
		Purpose:  purpose,
		CodeHash: auth.HashToken(code),
		Expires:  s.now().Add(s.codeTTL),
	})
	if err != nil {
		return "", fmt.Errorf("error saving code: %w", err)
	}
	return code, nil
}

func (s *UserService) checkCode(ctx context.Context, userID string, purpose models.CodePurpose, code string) error {
	repo := s.repomanager.Codes(s.db)

	stored, err := repo.Find(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidCode
		}
		return fmt.Errorf("error loading code: %w", err)
	}
	if !s.now().Before(stored.Expires) || stored.Attempts >= maxCodeAttempts {
		return common.ErrorInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(stored.CodeHash), []byte(auth.HashToken(code))) != 1 {
		if _, err := repo.IncrementAttempts(ctx, userID, purpose); err != nil {
			s.logger.Warn(ctx, "cannot record failed code attempt", "error", err)
		}
		return common.ErrorInvalidCode
	}
	return nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, hash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, hash, s.refreshTokenTTL); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.accessTokenTTL}, nil
}
