package repository

import (
	"context"

	"github.com/and161185/nextmode/internal/model"
)

// GoalRepository stores one ordered goal list per user.
type GoalRepository interface {
	// GetGoals returns the user's goals in stored order; an empty list when none are stored.
	GetGoals(ctx context.Context, username string) ([]model.Goal, error)
	// SaveGoals replaces the user's whole goal list.
	SaveGoals(ctx context.Context, username string, goals []model.Goal) error
}

// Store is the complete persistence contract. Writes are last-writer-wins.
type Store interface {
	UserRepository
	GoalRepository
}

// DefaultNamespace prefixes every record written by this application.
const DefaultNamespace = "nextmode"
