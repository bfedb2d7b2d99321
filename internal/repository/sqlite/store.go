// Package sqlite implements the repository interfaces on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/and161185/nextmode/internal/convert"
	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/migrate"
	"github.com/and161185/nextmode/internal/model"
	"github.com/and161185/nextmode/internal/repository"
)

// Store keeps users and goal lists as JSON text rows in one SQLite file.
type Store struct {
	db *sql.DB
	ns string
}

var _ repository.Store = (*Store)(nil)

// Open creates the parent directory if needed, opens the database file,
// applies migrations and returns a store scoped to namespace ns.
func Open(ctx context.Context, path, ns string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if err := migrate.UpDB(ctx, db, migrate.DriverSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return New(db, ns), nil
}

// New wraps an already migrated database. An empty ns selects repository.DefaultNamespace.
func New(db *sql.DB, ns string) *Store {
	if ns == "" {
		ns = repository.DefaultNamespace
	}
	return &Store{db: db, ns: ns}
}

// Close closes the database file.
func (s *Store) Close() error { return s.db.Close() }

// GetUser selects a user record by username.
func (s *Store) GetUser(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT data FROM nm_users WHERE ns = ? AND username = ?`
	var data string
	if err := s.db.QueryRowContext(ctx, q, s.ns, username).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (s *Store) SaveUser(ctx context.Context, u model.User) error {
	data, err := convert.EncodeUser(u)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO nm_users (ns, username, data) VALUES (?, ?, ?)
ON CONFLICT (ns, username) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
	_, err = s.db.ExecContext(ctx, q, s.ns, u.Username, string(data))
	return err
}

// GetGoals returns the stored goal list, or an empty list when none exists.
func (s *Store) GetGoals(ctx context.Context, username string) ([]model.Goal, error) {
	const q = `SELECT data FROM nm_goals WHERE ns = ? AND username = ?`
	var data string
	if err := s.db.QueryRowContext(ctx, q, s.ns, username).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (s *Store) SaveGoals(ctx context.Context, username string, goals []model.Goal) error {
	data, err := convert.EncodeGoals(goals)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO nm_goals (ns, username, data) VALUES (?, ?, ?)
ON CONFLICT (ns, username) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
	_, err = s.db.ExecContext(ctx, q, s.ns, username, string(data))
	return err
}
