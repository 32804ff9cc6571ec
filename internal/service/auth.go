package service

import (
	"context"
	"errors"
	"time"

	"github.com/fleetminder/fleetminder-go/internal/crypto"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserStore is the slice of the record store the auth service needs. Users
// are read-only here; accounts are seeded out of band.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthService validates credentials against the users collection.
type AuthService struct {
	store     UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Authenticate verifies a username/password pair and returns the principal.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates a user and returns their profile plus a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	if req.Username == "" {
		return model.LoginResponse{}, ErrUsernameRequired
	}
	if req.Password == "" {
		return model.LoginResponse{}, ErrPasswordRequired
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return model.LoginResponse{}, err
	}

	token, err := crypto.GenerateToken(user.ID.Hex(), user.Username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.ToResponse(),
	}, nil
}
