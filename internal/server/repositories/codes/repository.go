// Package codes stores emailed one-time codes (email verification and
// password reset), hashed.
package codes

import (
	"context"

	"github.com/dmitrijs2005/minutes/internal/server/models"
)

type Repository interface {
	// Save creates or replaces the code for (UserID, Purpose) and resets attempts.
	Save(ctx context.Context, code *models.Code) error
	// Find returns common.ErrorNotFound when no code is pending.
	Find(ctx context.Context, userID string, purpose models.CodePurpose) (*models.Code, error)
	// IncrementAttempts records a failed guess and returns the new count.
	IncrementAttempts(ctx context.Context, userID string, purpose models.CodePurpose) (int, error)
	Delete(ctx context.Context, userID string, purpose models.CodePurpose) error
}
