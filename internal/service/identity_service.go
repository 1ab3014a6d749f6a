package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// ErrInvalid marks input rejected before any store mutation.
var ErrInvalid = errors.New("invalid input")

// MinPasswordLength is a caller-side registration policy, not a store
// invariant.
const MinPasswordLength = 8

// dummyHash keeps Authenticate doing one bcrypt comparison whether or
// not the username exists, so the two failures have the same shape.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tasktracker.no-such-user"), bcrypt.DefaultCost)

// IdentityService wraps account registration and credential checks.
type IdentityService struct {
	users *repository.UserRepository
}

func NewIdentityService(users *repository.UserRepository) *IdentityService {
	return &IdentityService{users: users}
}

// Register creates an account. The plaintext password is hashed before
// storage and never persisted. Duplicate usernames or emails leave the
// store unchanged.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" {
		return fmt.Errorf("%w: username and email are required", ErrInvalid)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Settings:     model.Settings{},
	})
}

// Authenticate verifies a password against the stored hash. An unknown
// username yields false, not an error.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		// Burn a comparison anyway so absent users cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// Settings reads the preference blob for a user.
func (s *IdentityService) Settings(ctx context.Context, username string) (model.Settings, error) {
	return s.users.Settings(ctx, username)
}

// SaveSettings replaces the preference blob wholesale. Unknown keys are
// preserved opaquely.
func (s *IdentityService) SaveSettings(ctx context.Context, username string, settings model.Settings) error {
	return s.users.SaveSettings(ctx, username, settings)
}
