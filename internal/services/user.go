package services

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell-press/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetAvatar(ctx context.Context, id int, avatar string) error
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Bio       *string
	Avatar    *string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Username  string
	Bio       *string
	Avatar    *string
}

// UserService encapsulates account use-cases: registration, credential
// verification, and profile mutation.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. The plaintext password is hashed with
// bcrypt before it reaches the store and is never persisted.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.FirstName == "" || input.LastName == "" || input.Username == "" ||
		input.Email == "" || input.Password == "" {
		return types.User{}, ErrValidation
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	// The unique constraints on email and username still guard the
	// check-then-insert window under concurrent registrations; the
	// store maps that violation back to ErrConflict.
	return s.repo.Create(ctx, types.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        input.Email,
		Bio:          input.Bio,
		Avatar:       input.Avatar,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies an email/password pair. Unknown email and hash
// mismatch return the same ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, ErrValidation
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile mutates the caller's own profile. A username held by a
// different user is a conflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, input ProfileUpdate) (types.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	if input.FirstName == "" || input.LastName == "" || input.Username == "" {
		return types.User{}, ErrValidation
	}

	if existing, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		if existing.ID != userID {
			return types.User{}, ErrConflict
		}
	} else if !errors.Is(err, ErrNotFound) {
		return types.User{}, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Username = input.Username
	user.Bio = input.Bio
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}
	return s.repo.Update(ctx, user)
}

// SetAvatar stores a new avatar path reference on the user record.
func (s *UserService) SetAvatar(ctx context.Context, userID int, avatar string) (types.User, error) {
	if err := s.repo.SetAvatar(ctx, userID, avatar); err != nil {
		return types.User{}, err
	}
	return s.repo.GetByID(ctx, userID)
}
