package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
)

// idAttempts bounds retries when a generated id already exists in the list.
const idAttempts = 8

// Engine applies goal lifecycle changes. Every method is a pure transform:
// the input slice is never modified and a new slice is returned.
type Engine struct {
	now   func() time.Time
	newID func() (string, error)
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the goal id source.
func WithIDGenerator(gen func() (string, error)) EngineOption {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine constructs an Engine with a millisecond UTC clock and UUIDv4 ids.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID: func() (string, error) {
			id, err := uuid.NewV4()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func indexOf(goals []model.Goal, id string) int {
	return slices.IndexFunc(goals, func(g model.Goal) bool { return g.ID == id })
}

// Stored text is JSON, which would replace invalid UTF-8 silently.
func validateTitle(title string) (string, error) {
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("%w: title is not valid UTF-8", errs.ErrValidation)
	}
	t := strings.TrimSpace(title)
	if t == "" {
		return "", fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	return t, nil
}

func validateDescription(d string) error {
	if !utf8.ValidString(d) {
		return fmt.Errorf("%w: description is not valid UTF-8", errs.ErrValidation)
	}
	return nil
}

func validateDeadline(d string) error {
	if d == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return fmt.Errorf("%w: deadline %q is not YYYY-MM-DD", errs.ErrValidation, d)
	}
	return nil
}

func (e *Engine) uniqueID(goals []model.Goal) (string, error) {
	for range idAttempts {
		id, err := e.newID()
		if err != nil {
			return "", err
		}
		if id != "" && indexOf(goals, id) < 0 {
			return id, nil
		}
	}
	return "", errors.New("could not generate a unique goal id")
}

// Create appends a new Active goal built from in.
func (e *Engine) Create(goals []model.Goal, in model.GoalInput) ([]model.Goal, model.Goal, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, model.Goal{}, err
	}
	if !in.Category.Valid() {
		return nil, model.Goal{}, fmt.Errorf("%w: unknown category %q", errs.ErrValidation, in.Category)
	}
	if !in.Effort.Valid() {
		return nil, model.Goal{}, fmt.Errorf("%w: unknown effort %q", errs.ErrValidation, in.Effort)
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, model.Goal{}, err
	}
	if err := validateDeadline(in.Deadline); err != nil {
		return nil, model.Goal{}, err
	}
	id, err := e.uniqueID(goals)
	if err != nil {
		return nil, model.Goal{}, err
	}

	g := model.Goal{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Category:    in.Category,
		Effort:      in.Effort,
		Deadline:    in.Deadline,
		Status:      model.StatusActive,
		CreatedAt:   e.now(),
	}
	out := make([]model.Goal, 0, len(goals)+1)
	out = append(out, goals...)
	out = append(out, g)
	return out, g, nil
}

// Edit merges the non-nil fields of p into goal id. Terminal goals may be
// edited too; status, timestamps and id are never touched.
func (e *Engine) Edit(goals []model.Goal, id string, p model.GoalPatch) ([]model.Goal, error) {
	i := indexOf(goals, id)
	if i < 0 {
		return nil, fmt.Errorf("goal %s: %w", id, errs.ErrNotFound)
	}
	g := goals[i]
	if p.Title != nil {
		t, err := validateTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		g.Title = t
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return nil, err
		}
		g.Description = *p.Description
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", errs.ErrValidation, *p.Category)
		}
		g.Category = *p.Category
	}
	if p.Effort != nil {
		if !p.Effort.Valid() {
			return nil, fmt.Errorf("%w: unknown effort %q", errs.ErrValidation, *p.Effort)
		}
		g.Effort = *p.Effort
	}
	if p.Deadline != nil {
		if err := validateDeadline(*p.Deadline); err != nil {
			return nil, err
		}
		g.Deadline = *p.Deadline
	}
	out := slices.Clone(goals)
	out[i] = g
	return out, nil
}

func (e *Engine) activeAt(goals []model.Goal, id string) (int, error) {
	i := indexOf(goals, id)
	if i < 0 {
		return -1, fmt.Errorf("goal %s: %w", id, errs.ErrNotFound)
	}
	if st := goals[i].Status; st.Terminal() {
		return -1, fmt.Errorf("goal %s is %s: %w", id, st, errs.ErrInvalidTransition)
	}
	return i, nil
}

// Complete marks goal id Completed and returns u with the goal's effort
// points added to its score.
func (e *Engine) Complete(goals []model.Goal, u model.User, id string) ([]model.Goal, model.User, error) {
	i, err := e.activeAt(goals, id)
	if err != nil {
		return nil, model.User{}, err
	}
	out := slices.Clone(goals)
	out[i].Status = model.StatusCompleted
	out[i].CompletedAt = e.now()
	u.EvolutionScore += out[i].Effort.Points()
	return out, u, nil
}

// End marks goal id Ended with the given reason. The score is unaffected.
func (e *Engine) End(goals []model.Goal, id string, reason model.DeletionReason) ([]model.Goal, error) {
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: unknown deletion reason %q", errs.ErrValidation, reason)
	}
	i, err := e.activeAt(goals, id)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(goals)
	out[i].Status = model.StatusEnded
	out[i].DeletedAt = e.now()
	out[i].DeletionReason = reason
	return out, nil
}
