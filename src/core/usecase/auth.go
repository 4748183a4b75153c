package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
)

// ErrInvalidCredentials is the single outcome of a failed login.
// Unknown usernames and wrong passwords are indistinguishable.
var ErrInvalidCredentials = domain.NewUnauthorizedError("Username or password combination is incorrect")

// dummyPassword is hashed once at startup so a login for an unknown
// username still pays for one bcrypt comparison.
const dummyPassword = "jokesite-no-such-user"

// AuthService handles registration, login and session payloads.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	codec     ports.SessionCodec
	dummyHash string
	log       *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	codec ports.SessionCodec,
	log *slog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		dummyHash: dummy,
		log:       log,
	}, nil
}

// Register creates a user after checking the username is free.
// The check is repeated by the storage unique constraint, so two concurrent
// registrations of the same name end with exactly one user and one conflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if errs := domain.ValidateCredentials(username, password); errs.Any() {
		return nil, errs
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.NewConflictError(fmt.Sprintf("User with username %s already exists", username))
	case !domain.IsNotFound(err):
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Login returns the user whose password matches, or ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueSession encodes a fresh session for userID.
func (s *AuthService) IssueSession(userID uuid.UUID) (string, error) {
	return s.codec.Encode(domain.Session{UserID: userID})
}

// ResolveSession decodes a cookie value. Any failure reads as anonymous.
func (s *AuthService) ResolveSession(value string) (uuid.UUID, bool) {
	sess, ok := s.codec.Decode(value)
	if !ok {
		return uuid.Nil, false
	}
	return sess.UserID, true
}

// UserByID loads a user. A missing user yields (nil, nil).
func (s *AuthService) UserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// IsInvalidCredentials reports whether err is the uniform login failure.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
