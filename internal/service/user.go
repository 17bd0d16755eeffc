package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// UserService manages the authenticated user's own profile.
type UserService struct {
	users     store.UserStore
	hasher    *auth.PasswordHasher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users store.UserStore, hasher *auth.PasswordHasher, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		hasher:    hasher,
		validator: validator,
		logger:    logger,
	}
}

// UpdateProfileRequest changes the name and/or password. Nil fields are
// left alone.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,max=1024"`
}

// GetProfile returns the user.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "user", "get")
	}
	return user, nil
}

// UpdateProfile applies req to the user.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "user", "get")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domainerrors.FieldValidation("name", "name cannot be blank")
		}
		user.Name = name
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.Touch()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, translate(err, "user", "update")
	}

	s.logger.Info("Profile updated", "user_id", user.ID, "password_changed", req.Password != nil)
	return user, nil
}
