// Package convert maps domain entities to and from their stored JSON records.
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
)

// UserRecord is the stored form of a user.
type UserRecord struct {
	Username       string `json:"username"`
	Passcode       string `json:"passcode"`
	EvolutionScore int    `json:"evolutionScore"`
	HasSeenWelcome bool   `json:"hasSeenWelcome"`
}

// GoalRecord is the stored form of a goal. Timestamps are Unix milliseconds.
type GoalRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	Effort         string `json:"effort"`
	Deadline       string `json:"deadline,omitempty"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"createdAt"`
	CompletedAt    *int64 `json:"completedAt,omitempty"`
	DeletedAt      *int64 `json:"deletedAt,omitempty"`
	DeletionReason string `json:"deletionReason,omitempty"`
}

// --- helpers ---

func ms(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	v := t.UnixMilli()
	return &v
}

func fromMs(v *int64) time.Time {
	if v == nil {
		return time.Time{}
	}
	return time.UnixMilli(*v).UTC()
}

// --- User ---

// ToUserRecord converts a domain user to its record.
func ToUserRecord(u model.User) UserRecord {
	return UserRecord{
		Username:       u.Username,
		Passcode:       u.Passcode,
		EvolutionScore: u.EvolutionScore,
		HasSeenWelcome: u.HasSeenWelcome,
	}
}

// FromUserRecord converts a record into a domain user.
func FromUserRecord(r UserRecord) (model.User, error) {
	if r.Username == "" {
		return model.User{}, fmt.Errorf("%w: user record without username", errs.ErrValidation)
	}
	if r.EvolutionScore < 0 {
		return model.User{}, fmt.Errorf("%w: user %q: negative score", errs.ErrValidation, r.Username)
	}
	return model.User{
		Username:       r.Username,
		Passcode:       r.Passcode,
		EvolutionScore: r.EvolutionScore,
		HasSeenWelcome: r.HasSeenWelcome,
	}, nil
}

// EncodeUser serializes a user as JSON text.
func EncodeUser(u model.User) ([]byte, error) {
	return json.Marshal(ToUserRecord(u))
}

// DecodeUser parses JSON text produced by EncodeUser.
func DecodeUser(data []byte) (model.User, error) {
	var r UserRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return model.User{}, fmt.Errorf("decode user: %w", err)
	}
	return FromUserRecord(r)
}

// --- Goal ---

// ToGoalRecord converts a domain goal to its record.
func ToGoalRecord(g model.Goal) GoalRecord {
	return GoalRecord{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		Category:       string(g.Category),
		Effort:         string(g.Effort),
		Deadline:       g.Deadline,
		Status:         string(g.Status),
		CreatedAt:      g.CreatedAt.UnixMilli(),
		CompletedAt:    ms(g.CompletedAt),
		DeletedAt:      ms(g.DeletedAt),
		DeletionReason: string(g.DeletionReason),
	}
}

// FromGoalRecord converts a record into a domain goal, rejecting unknown
// labels and records that break the status invariants.
func FromGoalRecord(r GoalRecord) (model.Goal, error) {
	cat, err := model.ParseCategory(r.Category)
	if err != nil {
		return model.Goal{}, err
	}
	eff, err := model.ParseEffort(r.Effort)
	if err != nil {
		return model.Goal{}, err
	}
	st, err := model.ParseStatus(r.Status)
	if err != nil {
		return model.Goal{}, err
	}
	g := model.Goal{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Category:       cat,
		Effort:         eff,
		Deadline:       r.Deadline,
		Status:         st,
		CreatedAt:      time.UnixMilli(r.CreatedAt).UTC(),
		CompletedAt:    fromMs(r.CompletedAt),
		DeletedAt:      fromMs(r.DeletedAt),
		DeletionReason: model.DeletionReason(r.DeletionReason),
	}
	if err := g.Validate(); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// EncodeGoals serializes a goal list as a JSON array, preserving order.
// A nil list is written as an empty array.
func EncodeGoals(goals []model.Goal) ([]byte, error) {
	out := make([]GoalRecord, 0, len(goals))
	for _, g := range goals {
		out = append(out, ToGoalRecord(g))
	}
	return json.Marshal(out)
}

// DecodeGoals parses JSON text produced by EncodeGoals. Empty input and
// JSON null decode to an empty list.
func DecodeGoals(data []byte) ([]model.Goal, error) {
	var recs []GoalRecord
	if len(data) > 0 {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode goals: %w", err)
		}
	}
	out := make([]model.Goal, 0, len(recs))
	for i, r := range recs {
		g, err := FromGoalRecord(r)
		if err != nil {
			return nil, fmt.Errorf("goal[%d]: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}
