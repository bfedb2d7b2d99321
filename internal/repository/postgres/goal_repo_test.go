package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/nextmode/internal/convert"
	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
)

const (
	selGoals    = `SELECT data FROM nm_goals WHERE ns=\$1 AND username=\$2`
	upsertGoals = `INSERT INTO nm_goals \(ns, username, data\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \(ns, username\) DO UPDATE SET data = EXCLUDED.data, updated_at = now\(\)`
)

func goalList() []model.Goal {
	t0 := time.UnixMilli(1_720_000_000_000).UTC()
	return []model.Goal{
		{ID: "1", Title: "Gym", Category: model.CategoryDiscipline, Effort: model.EffortMedium, Status: model.StatusActive, CreatedAt: t0},
		{ID: "2", Title: "Exam", Category: model.CategoryStudies, Effort: model.EffortHigh, Status: model.StatusCompleted, CreatedAt: t0, CompletedAt: t0.Add(time.Minute)},
	}
}

func TestGoalRepo_SaveThenGet(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGoalRepo(db, "nextmode")
	ctx := context.Background()

	data, err := convert.EncodeGoals(goalList())
	require.NoError(t, err)

	mock.ExpectExec(upsertGoals).
		WithArgs("nextmode", "neo", string(data)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.SaveGoals(ctx, "neo", goalList()))

	mock.ExpectQuery(selGoals).
		WithArgs("nextmode", "neo").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(string(data)))
	got, err := r.GetGoals(ctx, "neo")
	require.NoError(t, err)
	require.Equal(t, goalList(), got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalRepo_GetGoals_NoRowIsEmpty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGoalRepo(db, "nextmode")

	mock.ExpectQuery(selGoals).WithArgs("nextmode", "new").WillReturnError(pgx.ErrNoRows)
	got, err := r.GetGoals(context.Background(), "new")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestGoalRepo_Errors(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGoalRepo(db, "nextmode")
	ctx := context.Background()

	mock.ExpectQuery(selGoals).WithArgs("nextmode", "neo").WillReturnError(errors.New("q-fail"))
	_, err := r.GetGoals(ctx, "neo")
	require.Error(t, err)

	mock.ExpectQuery(selGoals).WithArgs("nextmode", "neo").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(`[{"id":"x","title":"t","category":"Hobby","effort":"Low","status":"Active","createdAt":1}]`))
	_, err = r.GetGoals(ctx, "neo")
	require.ErrorIs(t, err, errs.ErrValidation)

	mock.ExpectExec(upsertGoals).WithArgs("nextmode", "neo", `[]`).WillReturnError(errors.New("exec-fail"))
	require.Error(t, r.SaveGoals(ctx, "neo", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
