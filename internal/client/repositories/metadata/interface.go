// Package metadata is a small key/value store in the local cache for client
// state that outlives a process, such as the last signed-in email.
package metadata

import (
	"context"
	"time"
)

// Well-known keys.
const (
	KeyLastEmail = "last_email"
	KeyLastSync  = "last_sync"
)

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// UpdatedAt reports when key was last written.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
