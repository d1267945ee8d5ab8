// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/metrichub/metrichub/internal/auth"
	"github.com/metrichub/metrichub/internal/metrics"
	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidUsername = errors.New("username must be 3-50 characters")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidFullName = errors.New("full name exceeds 100 characters")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
)

// User field limits.
const (
	minUsernameLength = 3
	maxUsernameLength = 50
	maxFullNameLength = 100
	minPasswordLength = 8
)

// UserService handles user business logic.
type UserService struct {
	repo    *repository.UserRepository
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.UserRepository, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{repo: repo, metrics: recorder}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Username string
	Email    string
	FullName string
	IsActive *bool
	Password string
}

// CreateUser validates input, checks username and email uniqueness,
// and persists a new user with a hashed password.
//
// The uniqueness checks are separate reads before the write with no
// transactional guarantee; two concurrent creates can both pass the
// check. This read-then-create sequence is the contract, not an
// oversight to repair here.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if err := validateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if len(input.FullName) > maxFullNameLength {
		return nil, ErrInvalidFullName
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	user, err := s.repo.Create(ctx, repository.CreateUserInput{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		IsActive:     isActive,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by the username index.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput defines the partial update; only non-nil fields change.
type UpdateUserInput struct {
	Username *string
	Email    *string
	FullName *string
	IsActive *bool
}

// UpdateUser validates and applies a partial update. Fields absent
// from the input keep their stored values; updated_at always
// refreshes.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	if input.Username != nil {
		if err := validateUsername(*input.Username); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		if err := validateEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.FullName != nil && len(*input.FullName) > maxFullNameLength {
		return nil, ErrInvalidFullName
	}

	user, err := s.repo.Update(ctx, id, repository.UpdateUserInput{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		IsActive: input.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.metrics.IncUserUpdated()
	return user, nil
}

// DeleteUser removes a user. Deleting an id that never existed
// succeeds.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncUserDeleted()
	return nil
}

// ListUsers returns one page of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) (*repository.UserPage, error) {
	return s.repo.List(ctx, limit, offset)
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
