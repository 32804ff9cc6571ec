package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/crypto"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/repository"
)

type fakeUserStore struct {
	users map[string]*model.User
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	hash, err := crypto.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	store := &fakeUserStore{users: map[string]*model.User{
		"maciej": {
			ID:           primitive.NewObjectID(),
			Username:     "maciej",
			PasswordHash: hash,
			FullName:     "Maciej Kowalski",
		},
	}}

	return NewAuthService(store, "test-secret", time.Hour)
}

func TestLogin_EmptyUsername(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{Password: "x"})
	if err != ErrUsernameRequired {
		t.Errorf("expected ErrUsernameRequired, got %v", err)
	}
}

func TestLogin_EmptyPassword(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "maciej"})
	if err != ErrPasswordRequired {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Username: "nobody",
		Password: "correct-password",
	})
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Username: "maciej",
		Password: "wrong-password",
	})
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Username: "maciej",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if resp.Token == "" {
		t.Error("expected a session token")
	}
	if resp.User.Username != "maciej" {
		t.Errorf("username = %q, want maciej", resp.User.Username)
	}
	if resp.User.FullName != "Maciej Kowalski" {
		t.Errorf("full name = %q, want Maciej Kowalski", resp.User.FullName)
	}
}

func TestAuthenticate_ReturnsPrincipal(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Authenticate(context.Background(), "maciej", "correct-password")
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if user.Username != "maciej" {
		t.Errorf("username = %q, want maciej", user.Username)
	}
}
