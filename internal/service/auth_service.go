package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

// AuthService handles account signup, login and profile management.
type AuthService struct {
	users    repository.UserRepository
	sessions *SessionStore
}

func NewAuthService(users repository.UserRepository, sessions *SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// SignupParams are the fields required to create an account.
type SignupParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup creates the account and opens a session.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (*entity.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", entity.ErrValidation)
	}
	if len(params.Password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", entity.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, "", fmt.Errorf("%w: email already registered", entity.ErrValidation)
		}
		return nil, "", err
	}

	slog.Info("Service: User signed up", "user_id", user.ID)
	return user, s.sessions.Create(user.ID), nil
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, "", entity.ErrUnauthorized
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", entity.ErrUnauthorized
	}

	return user, s.sessions.Create(user.ID), nil
}

// Logout drops the session. Idempotent.
func (s *AuthService) Logout(token string) {
	s.sessions.Delete(token)
}

// UserFromToken resolves a session token to its account.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*entity.User, error) {
	userID, ok := s.sessions.Lookup(token)
	if !ok {
		return nil, entity.ErrUnauthorized
	}
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile changes the account's display names.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName
	user.LastName = lastName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return entity.ErrUnauthorized
	}
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", entity.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}
