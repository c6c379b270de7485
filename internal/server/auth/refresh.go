package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/minutes/internal/common"
)

const refreshTokenBytes = 32

// NewRefreshToken returns a random opaque refresh token and the hash that is
// stored server-side. Only the hash ever reaches the database.
func NewRefreshToken() (token, hash string, err error) {
	token, err = common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, HashToken(token), nil
}

// HashToken is the SHA-256 hex digest used to store refresh tokens and
// emailed codes.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
