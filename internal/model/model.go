// Package model defines domain entities used by services and repositories.
package model

import (
	"fmt"
	"time"

	"github.com/and161185/nextmode/internal/errs"
)

// User is the owner of a goal list. Passcode holds whatever the credential
// scheme stores: the plain digits by default.
type User struct {
	Username       string
	Passcode       string
	EvolutionScore int
	HasSeenWelcome bool
}

// Goal is a single user-defined objective ("protocol").
// Zero timestamps and an empty DeletionReason mean "unset".
type Goal struct {
	ID             string
	Title          string
	Description    string
	Category       Category
	Effort         Effort
	Deadline       string // YYYY-MM-DD, advisory only
	Status         Status
	CreatedAt      time.Time
	CompletedAt    time.Time
	DeletedAt      time.Time
	DeletionReason DeletionReason
}

// Validate checks the enum fields and the status/timestamp coupling:
// CompletedAt is set iff Completed, DeletedAt and DeletionReason iff Ended.
func (g Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: goal id is empty", errs.ErrValidation)
	}
	if g.Title == "" {
		return fmt.Errorf("%w: goal %s: empty title", errs.ErrValidation, g.ID)
	}
	if !g.Category.Valid() || !g.Effort.Valid() || !g.Status.Valid() {
		return fmt.Errorf("%w: goal %s: bad category/effort/status", errs.ErrValidation, g.ID)
	}
	completed := g.Status == StatusCompleted
	ended := g.Status == StatusEnded
	if completed == g.CompletedAt.IsZero() {
		return fmt.Errorf("%w: goal %s: completedAt does not match status %s", errs.ErrValidation, g.ID, g.Status)
	}
	if ended == g.DeletedAt.IsZero() {
		return fmt.Errorf("%w: goal %s: deletedAt does not match status %s", errs.ErrValidation, g.ID, g.Status)
	}
	if ended != g.DeletionReason.Valid() || (!ended && g.DeletionReason != "") {
		return fmt.Errorf("%w: goal %s: deletionReason does not match status %s", errs.ErrValidation, g.ID, g.Status)
	}
	return nil
}

// GoalInput carries the fields accepted when creating a goal.
type GoalInput struct {
	Title       string
	Description string
	Category    Category
	Effort      Effort
	Deadline    string
}

// GoalPatch carries an edit; nil fields are left untouched.
type GoalPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Effort      *Effort
	Deadline    *string
}

// Insight is the advisory message derived from goal statistics.
type Insight string

const (
	InsightDefault            Insight = "Keep going. Evolution is daily."
	InsightHighDiscipline     Insight = "High discipline level. Stay focused."
	InsightAdjustExpectations Insight = "Adjust your expectations. Smaller goals bring more consistency."
)

// Stats aggregates a goal list.
type Stats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Ended     int     `json:"ended"`
	Active    int     `json:"active"`
	Rate      int     `json:"rate"` // percent of non-active goals that were completed
	Insight   Insight `json:"insight"`
}
