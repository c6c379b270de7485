// Package refreshtokens declares the server-side repository contract for
// refresh sessions. Tokens are addressed by their SHA-256 hash.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/minutes/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a refresh session for userID expiring at now+validity.
	Create(ctx context.Context, userID string, tokenHash string, validity time.Duration) error

	// Find returns the session for tokenHash or common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Delete removes a session. Deleting a missing one is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteForUser revokes every session of userID.
	DeleteForUser(ctx context.Context, userID string) error
}
