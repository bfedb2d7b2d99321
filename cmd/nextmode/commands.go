package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
	"github.com/and161185/nextmode/internal/session"
)

// ------- views -------

type userView struct {
	Username       string `json:"username"`
	EvolutionScore int    `json:"evolutionScore"`
	HasSeenWelcome bool   `json:"hasSeenWelcome"`
}

type goalView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	Effort         string `json:"effort"`
	Points         int    `json:"points"`
	Deadline       string `json:"deadline,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
	CompletedAt    string `json:"completedAt,omitempty"`
	DeletedAt      string `json:"deletedAt,omitempty"`
	DeletionReason string `json:"deletionReason,omitempty"`
}

func toUserView(u model.User) userView {
	return userView{Username: u.Username, EvolutionScore: u.EvolutionScore, HasSeenWelcome: u.HasSeenWelcome}
}

func tsString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toGoalView(g model.Goal) goalView {
	return goalView{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		Category:       string(g.Category),
		Effort:         string(g.Effort),
		Points:         g.Effort.Points(),
		Deadline:       g.Deadline,
		Status:         string(g.Status),
		CreatedAt:      tsString(g.CreatedAt),
		CompletedAt:    tsString(g.CompletedAt),
		DeletedAt:      tsString(g.DeletedAt),
		DeletionReason: string(g.DeletionReason),
	}
}

func toGoalViews(goals []model.Goal) []goalView {
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalView(g))
	}
	return out
}

// ------- flag helpers -------

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrValidation, fs.Name(), err)
	}
	return nil
}

func requireID(fs *flag.FlagSet, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s needs -id", errs.ErrValidation, fs.Name())
	}
	return nil
}

// ------- commands -------

type loginResult struct {
	User        userView `json:"user"`
	ShowWelcome bool     `json:"showWelcome"`
}

func loginCmd(s *session.Session) (any, error) {
	u, err := s.User()
	if err != nil {
		return nil, err
	}
	show, err := s.ShouldShowWelcome()
	if err != nil {
		return nil, err
	}
	return loginResult{User: toUserView(u), ShowWelcome: show}, nil
}

type addResult struct {
	Goal        goalView `json:"goal"`
	ShowWelcome bool     `json:"showWelcome"`
}

func addCmd(ctx context.Context, s *session.Session, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("add", stderr)
	title := fs.String("title", "", "goal title")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "Life|Studies|Future|Discipline")
	effort := fs.String("effort", "", "Low|Medium|High")
	deadline := fs.String("deadline", "", "YYYY-MM-DD")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	c, err := model.ParseCategory(*category)
	if err != nil {
		return nil, err
	}
	e, err := model.ParseEffort(*effort)
	if err != nil {
		return nil, err
	}

	g, err := s.CreateGoal(ctx, model.GoalInput{
		Title: *title, Description: *desc, Category: c, Effort: e, Deadline: *deadline,
	})
	if err != nil {
		return nil, err
	}
	show, err := s.ShouldShowWelcome()
	if err != nil {
		return nil, err
	}
	return addResult{Goal: toGoalView(g), ShowWelcome: show}, nil
}

func editCmd(ctx context.Context, s *session.Session, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("edit", stderr)
	id := fs.String("id", "", "goal id")
	title := fs.String("title", "", "goal title")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "Life|Studies|Future|Discipline")
	effort := fs.String("effort", "", "Low|Medium|High")
	deadline := fs.String("deadline", "", "YYYY-MM-DD, empty clears")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if err := requireID(fs, *id); err != nil {
		return nil, err
	}

	// only flags given on the command line become part of the patch
	var p model.GoalPatch
	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			p.Title = title
		case "desc":
			p.Description = desc
		case "deadline":
			p.Deadline = deadline
		case "category":
			c, err := model.ParseCategory(*category)
			if err != nil {
				perr = err
				return
			}
			p.Category = &c
		case "effort":
			e, err := model.ParseEffort(*effort)
			if err != nil {
				perr = err
				return
			}
			p.Effort = &e
		}
	})
	if perr != nil {
		return nil, perr
	}

	g, err := s.EditGoal(ctx, *id, p)
	if err != nil {
		return nil, err
	}
	return toGoalView(g), nil
}

type completeResult struct {
	Goal goalView `json:"goal"`
	User userView `json:"user"`
}

func completeCmd(ctx context.Context, s *session.Session, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("complete", stderr)
	id := fs.String("id", "", "goal id")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if err := requireID(fs, *id); err != nil {
		return nil, err
	}
	g, u, err := s.CompleteGoal(ctx, *id)
	if err != nil {
		return nil, err
	}
	return completeResult{Goal: toGoalView(g), User: toUserView(u)}, nil
}

func endCmd(ctx context.Context, s *session.Session, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("end", stderr)
	id := fs.String("id", "", "goal id")
	reason := fs.String("reason", "", `"Not a priority"|"Lack of time"|"Poorly defined"`)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if err := requireID(fs, *id); err != nil {
		return nil, err
	}
	r, err := model.ParseDeletionReason(*reason)
	if err != nil {
		return nil, err
	}
	g, err := s.EndGoal(ctx, *id, r)
	if err != nil {
		return nil, err
	}
	return toGoalView(g), nil
}

func listCmd(s *session.Session, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("list", stderr)
	active := fs.Bool("active", false, "only active goals")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	var (
		goals []model.Goal
		err   error
	)
	if *active {
		goals, err = s.Active()
	} else {
		goals, err = s.Goals()
	}
	if err != nil {
		return nil, err
	}
	return toGoalViews(goals), nil
}

type statsResult struct {
	model.Stats
	EvolutionScore int `json:"evolutionScore"`
}

func statsCmd(s *session.Session) (any, error) {
	st, err := s.Stats()
	if err != nil {
		return nil, err
	}
	u, err := s.User()
	if err != nil {
		return nil, err
	}
	return statsResult{Stats: st, EvolutionScore: u.EvolutionScore}, nil
}
