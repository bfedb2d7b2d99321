// Package service contains the identity resolver, the goal lifecycle engine
// and the statistics derived from a goal list.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/nextmode/internal/crypto"
	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/model"
	"github.com/and161185/nextmode/internal/repository"
)

// MaxPasscodeLen is the longest accepted passcode.
const MaxPasscodeLen = 4

// IdentityService authenticates existing users and provisions new ones.
type IdentityService interface {
	// Resolve logs in username, creating the user on first use.
	Resolve(ctx context.Context, username, passcode string) (model.User, error)
	// MarkWelcomeSeen sets the welcome flag once and persists it.
	MarkWelcomeSeen(ctx context.Context, u model.User) (model.User, error)
}

type IdentityServiceImpl struct {
	users repository.UserRepository
	creds crypto.Credentials
	log   *zap.Logger
}

// NewIdentityService constructs IdentityService. A nil creds selects crypto.Plain,
// a nil log discards output.
func NewIdentityService(users repository.UserRepository, creds crypto.Credentials, log *zap.Logger) *IdentityServiceImpl {
	if creds == nil {
		creds = crypto.Plain{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityServiceImpl{users: users, creds: creds, log: log}
}

// ValidateCredentials checks the input shape: non-empty username and a
// passcode of 1 to 4 decimal digits.
func ValidateCredentials(username, passcode string) error {
	if username == "" || passcode == "" {
		return fmt.Errorf("%w: username and passcode are required", errs.ErrValidation)
	}
	if len(passcode) > MaxPasscodeLen {
		return fmt.Errorf("%w: passcode must have at most %d digits", errs.ErrValidation, MaxPasscodeLen)
	}
	for i := 0; i < len(passcode); i++ {
		if passcode[i] < '0' || passcode[i] > '9' {
			return fmt.Errorf("%w: passcode must be numeric", errs.ErrValidation)
		}
	}
	return nil
}

// Resolve validates input without touching the store, then either verifies
// the passcode of the existing user or registers a new one.
func (s *IdentityServiceImpl) Resolve(ctx context.Context, username, passcode string) (model.User, error) {
	if err := ValidateCredentials(username, passcode); err != nil {
		return model.User{}, err
	}

	u, err := s.users.GetUser(ctx, username)
	switch {
	case err == nil:
		if !s.creds.Verify(passcode, u.Passcode) {
			s.log.Info("login rejected", zap.String("user", username))
			return model.User{}, errs.ErrUnauthorized
		}
		s.log.Debug("login", zap.String("user", username))
		return *u, nil
	case errors.Is(err, errs.ErrNotFound):
		return s.register(ctx, username, passcode)
	default:
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
}

func (s *IdentityServiceImpl) register(ctx context.Context, username, passcode string) (model.User, error) {
	stored, err := s.creds.Seal(passcode)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Username: username, Passcode: stored}
	if err := s.users.SaveUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("save user: %w", err)
	}
	s.log.Info("user registered", zap.String("user", username))
	return u, nil
}

// MarkWelcomeSeen flips HasSeenWelcome to true. Already-set users are
// returned unchanged without a write.
func (s *IdentityServiceImpl) MarkWelcomeSeen(ctx context.Context, u model.User) (model.User, error) {
	if u.HasSeenWelcome {
		return u, nil
	}
	u.HasSeenWelcome = true
	if err := s.users.SaveUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}
