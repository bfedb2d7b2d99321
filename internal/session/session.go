// Package session binds a resolved user to the goal lifecycle engine and
// persists every mutation through the store.
package session

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
	"github.com/and161185/nextmode/internal/repository"
	"github.com/and161185/nextmode/internal/service"
)

// Deps are the collaborators of a session.
type Deps struct {
	Store    repository.Store
	Identity service.IdentityService
	Engine   *service.Engine
	Log      *zap.Logger
}

// Session is one logged-in user's view of the store. It is not safe for
// concurrent use; two sessions for the same user overwrite each other.
type Session struct {
	store    repository.Store
	identity service.IdentityService
	engine   *service.Engine
	log      *zap.Logger

	user   model.User
	goals  []model.Goal
	closed bool
}

// Open resolves the user (registering on first use) and loads their goals.
func Open(ctx context.Context, d Deps, username, passcode string) (*Session, error) {
	if d.Engine == nil {
		d.Engine = service.NewEngine()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Identity == nil {
		d.Identity = service.NewIdentityService(d.Store, nil, d.Log)
	}

	u, err := d.Identity.Resolve(ctx, username, passcode)
	if err != nil {
		return nil, err
	}
	goals, err := d.Store.GetGoals(ctx, u.Username)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	if goals == nil {
		goals = []model.Goal{}
	}

	log := d.Log.With(zap.String("user", u.Username))
	log.Debug("session opened", zap.Int("goals", len(goals)))
	return &Session{
		store:    d.Store,
		identity: d.Identity,
		engine:   d.Engine,
		log:      log,
		user:     u,
		goals:    goals,
	}, nil
}

func (s *Session) check() error {
	if s.closed {
		return errs.ErrSessionClosed
	}
	return nil
}

func (s *Session) saveGoals(ctx context.Context, goals []model.Goal) error {
	if err := s.store.SaveGoals(ctx, s.user.Username, goals); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	s.goals = goals
	return nil
}

// CreateGoal adds a new Active goal.
func (s *Session) CreateGoal(ctx context.Context, in model.GoalInput) (model.Goal, error) {
	if err := s.check(); err != nil {
		return model.Goal{}, err
	}
	goals, g, err := s.engine.Create(s.goals, in)
	if err != nil {
		return model.Goal{}, err
	}
	if err := s.saveGoals(ctx, goals); err != nil {
		return model.Goal{}, err
	}
	s.log.Info("goal created", zap.String("goal", g.ID), zap.String("effort", string(g.Effort)))
	return g, nil
}

// EditGoal applies a patch to goal id.
func (s *Session) EditGoal(ctx context.Context, id string, p model.GoalPatch) (model.Goal, error) {
	if err := s.check(); err != nil {
		return model.Goal{}, err
	}
	goals, err := s.engine.Edit(s.goals, id, p)
	if err != nil {
		return model.Goal{}, err
	}
	if err := s.saveGoals(ctx, goals); err != nil {
		return model.Goal{}, err
	}
	s.log.Info("goal edited", zap.String("goal", id))
	return s.find(id), nil
}

// CompleteGoal completes goal id and awards its effort points. The goal list
// is written before the user. If the user write fails the previous goal list
// is written back and the session is left unchanged, so the call can be retried.
func (s *Session) CompleteGoal(ctx context.Context, id string) (model.Goal, model.User, error) {
	if err := s.check(); err != nil {
		return model.Goal{}, model.User{}, err
	}
	goals, u, err := s.engine.Complete(s.goals, s.user, id)
	if err != nil {
		return model.Goal{}, model.User{}, err
	}
	if err := s.store.SaveGoals(ctx, s.user.Username, goals); err != nil {
		return model.Goal{}, model.User{}, fmt.Errorf("save goals: %w", err)
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		if rerr := s.store.SaveGoals(ctx, s.user.Username, s.goals); rerr != nil {
			s.log.Error("restore goals after failed user write", zap.String("goal", id), zap.Error(rerr))
		}
		return model.Goal{}, model.User{}, fmt.Errorf("save user: %w", err)
	}
	s.goals = goals
	s.user = u
	s.log.Info("goal completed", zap.String("goal", id), zap.Int("score", u.EvolutionScore))
	return s.find(id), u, nil
}

// EndGoal ends goal id with reason.
func (s *Session) EndGoal(ctx context.Context, id string, reason model.DeletionReason) (model.Goal, error) {
	if err := s.check(); err != nil {
		return model.Goal{}, err
	}
	goals, err := s.engine.End(s.goals, id, reason)
	if err != nil {
		return model.Goal{}, err
	}
	if err := s.saveGoals(ctx, goals); err != nil {
		return model.Goal{}, err
	}
	s.log.Info("goal ended", zap.String("goal", id), zap.String("reason", string(reason)))
	return s.find(id), nil
}

// MarkWelcomeSeen records that the welcome message was shown.
func (s *Session) MarkWelcomeSeen(ctx context.Context) (model.User, error) {
	if err := s.check(); err != nil {
		return model.User{}, err
	}
	u, err := s.identity.MarkWelcomeSeen(ctx, s.user)
	if err != nil {
		return model.User{}, err
	}
	s.user = u
	return u, nil
}

// ShouldShowWelcome reports whether the one-time welcome is due: the user
// has not seen it and owns exactly one goal.
func (s *Session) ShouldShowWelcome() (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	return !s.user.HasSeenWelcome && len(s.goals) == 1, nil
}

// Stats summarizes the goal list.
func (s *Session) Stats() (model.Stats, error) {
	if err := s.check(); err != nil {
		return model.Stats{}, err
	}
	return service.ComputeStats(s.goals), nil
}

// Goals returns a copy of every goal in list order.
func (s *Session) Goals() ([]model.Goal, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return slices.Clone(s.goals), nil
}

// Active returns the Active goals.
func (s *Session) Active() ([]model.Goal, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return service.ActiveGoals(s.goals), nil
}

// History returns finished goals, most recent first.
func (s *Session) History() ([]model.Goal, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return service.History(s.goals), nil
}

// User returns the logged-in user.
func (s *Session) User() (model.User, error) {
	if err := s.check(); err != nil {
		return model.User{}, err
	}
	return s.user, nil
}

// Close ends the session and drops the cached state. It is safe to call twice.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.goals = nil
	s.user = model.User{}
	s.log.Debug("session closed")
}

func (s *Session) find(id string) model.Goal {
	for _, g := range s.goals {
		if g.ID == id {
			return g
		}
	}
	return model.Goal{}
}
