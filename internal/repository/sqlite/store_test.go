package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
)

func openStore(t *testing.T, ns string) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "nextmode.db"), ns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UserUpsert(t *testing.T) {
	s := openStore(t, "")
	ctx := context.Background()

	_, err := s.GetUser(ctx, "neo")
	require.ErrorIs(t, err, errs.ErrNotFound)

	u := model.User{Username: "neo", Passcode: "1999"}
	require.NoError(t, s.SaveUser(ctx, u))

	got, err := s.GetUser(ctx, "neo")
	require.NoError(t, err)
	require.Equal(t, u, *got)

	u.EvolutionScore = 30
	u.HasSeenWelcome = true
	require.NoError(t, s.SaveUser(ctx, u))
	got, err = s.GetUser(ctx, "neo")
	require.NoError(t, err)
	require.Equal(t, u, *got)

	_, err = s.GetUser(ctx, "Neo")
	require.ErrorIs(t, err, errs.ErrNotFound, "usernames are case-sensitive")
}

func TestStore_GoalsRoundTripPreservesOrder(t *testing.T) {
	s := openStore(t, "")
	ctx := context.Background()

	empty, err := s.GetGoals(ctx, "neo")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	t0 := time.UnixMilli(1_730_000_000_000).UTC()
	goals := []model.Goal{
		{ID: "z", Title: "Last alphabetically", Category: model.CategoryLife, Effort: model.EffortLow, Status: model.StatusActive, CreatedAt: t0},
		{ID: "a", Title: "First", Category: model.CategoryFuture, Effort: model.EffortHigh, Status: model.StatusEnded,
			CreatedAt: t0, DeletedAt: t0.Add(time.Second), DeletionReason: model.ReasonNotPriority},
		{ID: "m", Title: "Middle", Description: "desc", Deadline: "2027-01-01", Category: model.CategoryStudies,
			Effort: model.EffortMedium, Status: model.StatusCompleted, CreatedAt: t0, CompletedAt: t0.Add(time.Hour)},
	}
	require.NoError(t, s.SaveGoals(ctx, "neo", goals))

	got, err := s.GetGoals(ctx, "neo")
	require.NoError(t, err)
	if diff := cmp.Diff(goals, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.SaveGoals(ctx, "neo", goals[:1]))
	got, err = s.GetGoals(ctx, "neo")
	require.NoError(t, err)
	require.Len(t, got, 1, "save is a full replace")
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	a, err := Open(ctx, path, "alpha")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SaveUser(ctx, model.User{Username: "neo", Passcode: "1"}))

	b, err := Open(ctx, path, "beta")
	require.NoError(t, err)
	defer b.Close()
	_, err = b.GetUser(ctx, "neo")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
