// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/nextmode/internal/model"
)

// UserRepository provides keyed access to user records.
type UserRepository interface {
	// GetUser loads a user by username; errs.ErrNotFound when absent.
	GetUser(ctx context.Context, username string) (*model.User, error)
	// SaveUser upserts a user keyed by username, overwriting any previous record.
	SaveUser(ctx context.Context, u model.User) error
}
