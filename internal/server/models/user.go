// Package models defines server-side data models persisted in the database.
// Records returned by the JSON API live in internal/models.
package models

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	Verified     bool
	CreatedAt    time.Time
}
