package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/and161185/nextmode/internal/model"
)

// ComputeStats counts goals by status and derives the completion rate and
// insight. Rate is the share of non-active goals that were completed,
// rounded half up; it is 0 while every goal is still active.
func ComputeStats(goals []model.Goal) model.Stats {
	var st model.Stats
	st.Total = len(goals)
	for _, g := range goals {
		switch g.Status {
		case model.StatusActive:
			st.Active++
		case model.StatusCompleted:
			st.Completed++
		case model.StatusEnded:
			st.Ended++
		}
	}

	if closed := st.Total - st.Active; closed > 0 {
		st.Rate = (200*st.Completed + closed) / (2 * closed)
	}

	st.Insight = model.InsightDefault
	if st.Rate > 70 {
		st.Insight = model.InsightHighDiscipline
	}
	// applied last: overrides the rate-based message
	if st.Ended > st.Completed && st.Total > 2 {
		st.Insight = model.InsightAdjustExpectations
	}
	return st
}

// ActiveGoals returns the Active goals in list order.
func ActiveGoals(goals []model.Goal) []model.Goal {
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Status == model.StatusActive {
			out = append(out, g)
		}
	}
	return out
}

// closedAt is the time a goal left the Active state.
func closedAt(g model.Goal) time.Time {
	if !g.CompletedAt.IsZero() {
		return g.CompletedAt
	}
	return g.DeletedAt
}

// History returns the Completed and Ended goals, most recently closed first.
// Goals closed at the same instant keep their list order.
func History(goals []model.Goal) []model.Goal {
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Status != model.StatusActive {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Goal) int {
		return cmp.Compare(closedAt(b).UnixNano(), closedAt(a).UnixNano())
	})
	return out
}
