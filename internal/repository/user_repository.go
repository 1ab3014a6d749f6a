package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// UserRepository handles account records.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A username or email collision leaves the
// store unchanged and returns ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user %q: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// Exists reports whether a username is known.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return count > 0, nil
}

// Settings reads the preference blob for a user.
func (r *UserRepository) Settings(ctx context.Context, username string) (model.Settings, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Settings == nil {
		return model.Settings{}, nil
	}
	return user.Settings, nil
}

// SaveSettings replaces the preference blob wholesale.
func (r *UserRepository) SaveSettings(ctx context.Context, username string, settings model.Settings) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update("settings", settings)
	if res.Error != nil {
		return fmt.Errorf("save settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
