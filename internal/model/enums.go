package model

import (
	"fmt"

	"github.com/and161185/nextmode/internal/errs"
)

// Category classifies a goal. Values are the persisted labels.
type Category string

const (
	CategoryLife       Category = "Life"
	CategoryStudies    Category = "Studies"
	CategoryFuture     Category = "Future"
	CategoryDiscipline Category = "Discipline"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryLife, CategoryStudies, CategoryFuture, CategoryDiscipline}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLife, CategoryStudies, CategoryFuture, CategoryDiscipline:
		return true
	}
	return false
}

// ParseCategory converts a persisted label into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", errs.ErrValidation, s)
	}
	return c, nil
}

// Effort is the declared effort level of a goal.
type Effort string

const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// Efforts lists every effort level from lowest to highest.
var Efforts = []Effort{EffortLow, EffortMedium, EffortHigh}

// Effort point table.
const (
	PointsLow    = 10
	PointsMedium = 20
	PointsHigh   = 30
)

// Valid reports whether e is one of the known effort levels.
func (e Effort) Valid() bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	}
	return false
}

// Points returns the score awarded when a goal of this effort is completed.
// Unknown levels are worth nothing.
func (e Effort) Points() int {
	switch e {
	case EffortLow:
		return PointsLow
	case EffortMedium:
		return PointsMedium
	case EffortHigh:
		return PointsHigh
	}
	return 0
}

// ParseEffort converts a persisted label into an Effort.
func ParseEffort(s string) (Effort, error) {
	e := Effort(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: unknown effort %q", errs.ErrValidation, s)
	}
	return e, nil
}

// Status is the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusEnded     Status = "Ended"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusEnded:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusEnded
}

// ParseStatus converts a persisted label into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", errs.ErrValidation, s)
	}
	return st, nil
}

// DeletionReason explains why a goal was ended without completion.
type DeletionReason string

const (
	ReasonNotPriority   DeletionReason = "Not a priority"
	ReasonLackOfTime    DeletionReason = "Lack of time"
	ReasonPoorlyDefined DeletionReason = "Poorly defined"
)

// DeletionReasons lists every reason in display order.
var DeletionReasons = []DeletionReason{ReasonNotPriority, ReasonLackOfTime, ReasonPoorlyDefined}

// Valid reports whether r is one of the known reasons.
func (r DeletionReason) Valid() bool {
	switch r {
	case ReasonNotPriority, ReasonLackOfTime, ReasonPoorlyDefined:
		return true
	}
	return false
}

// ParseDeletionReason converts a persisted label into a DeletionReason.
func ParseDeletionReason(s string) (DeletionReason, error) {
	r := DeletionReason(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown deletion reason %q", errs.ErrValidation, s)
	}
	return r, nil
}
