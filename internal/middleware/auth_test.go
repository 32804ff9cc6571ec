package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/crypto"
	"github.com/fleetminder/fleetminder-go/internal/model"
)

type fakeAuthenticator struct {
	user *model.User
}

func (a *fakeAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if a.user != nil && username == a.user.Username && password == "secret" {
		return a.user, nil
	}
	return nil, errors.New("incorrect username or password")
}

func newAuthTestServer(t *testing.T, secret string) (http.Handler, *model.User) {
	t.Helper()

	user := &model.User{
		ID:       primitive.NewObjectID(),
		Username: "maciej",
		FullName: "Maciej Kowalski",
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Error("no principal in context behind auth middleware")
		}
		if p.UserID != user.ID {
			t.Errorf("principal UserID = %v, want %v", p.UserID, user.ID)
		}
		w.WriteHeader(http.StatusOK)
	})

	return Auth(&fakeAuthenticator{user: user}, secret)(next), user
}

func TestAuthBasicValid(t *testing.T) {
	h, _ := newAuthTestServer(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.SetBasicAuth("maciej", "secret")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthBasicWrongPassword(t *testing.T) {
	h, _ := newAuthTestServer(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.SetBasicAuth("maciej", "wrong")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthBearerValid(t *testing.T) {
	h, user := newAuthTestServer(t, "test-secret")

	token, err := crypto.GenerateToken(user.ID.Hex(), user.Username, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthBearerInvalidToken(t *testing.T) {
	h, _ := newAuthTestServer(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMissingCredentials(t *testing.T) {
	h, _ := newAuthTestServer(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected a WWW-Authenticate challenge")
	}
}
