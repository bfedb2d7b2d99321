package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/nextmode/internal/convert"
	"github.com/and161185/nextmode/internal/model"
)

// GoalRepo implements GoalRepository using PostgreSQL.
type GoalRepo struct {
	db *DB
	ns string
}

// NewGoalRepo constructs a goal repository scoped to namespace ns.
func NewGoalRepo(db *DB, ns string) *GoalRepo { return &GoalRepo{db: db, ns: ns} }

// GetGoals returns the stored goal list, or an empty list when none exists.
func (r *GoalRepo) GetGoals(ctx context.Context, username string) ([]model.Goal, error) {
	const q = `SELECT data FROM nm_goals WHERE ns=$1 AND username=$2`
	var data string
	if err := r.db.Pool.QueryRow(ctx, q, r.ns, username).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []model.Goal{}, nil
		}
		return nil, err
	}
	goals, err := convert.DecodeGoals([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("goals of %q: %w", username, err)
	}
	return goals, nil
}

// SaveGoals replaces the whole goal list of a user.
func (r *GoalRepo) SaveGoals(ctx context.Context, username string, goals []model.Goal) error {
	data, err := convert.EncodeGoals(goals)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO nm_goals (ns, username, data)
VALUES ($1, $2, $3)
ON CONFLICT (ns, username) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	_, err = r.db.Pool.Exec(ctx, q, r.ns, username, string(data))
	return err
}
