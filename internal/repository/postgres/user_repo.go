package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/nextmode/internal/convert"
	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct {
	db *DB
	ns string
}

// NewUserRepo constructs a user repository scoped to namespace ns.
func NewUserRepo(db *DB, ns string) *UserRepo { return &UserRepo{db: db, ns: ns} }

// GetUser selects a user record by username.
func (r *UserRepo) GetUser(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT data FROM nm_users WHERE ns=$1 AND username=$2`
	var data string
	if err := r.db.Pool.QueryRow(ctx, q, r.ns, username).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u, err := convert.DecodeUser([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return &u, nil
}

// SaveUser upserts the user record.
func (r *UserRepo) SaveUser(ctx context.Context, u model.User) error {
	data, err := convert.EncodeUser(u)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO nm_users (ns, username, data)
VALUES ($1, $2, $3)
ON CONFLICT (ns, username) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	_, err = r.db.Pool.Exec(ctx, q, r.ns, u.Username, string(data))
	return err
}
