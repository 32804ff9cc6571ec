package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/crypto"
	"github.com/fleetminder/fleetminder-go/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal identifies the authenticated user for the current request.
type Principal struct {
	UserID   primitive.ObjectID
	Username string
}

// Authenticator validates username/password credentials against the record
// store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// Auth returns middleware that authenticates requests via HTTP Basic
// credentials, or alternatively via a Bearer token issued by the login
// endpoint. Vehicle endpoints accept either.
func Auth(auth Authenticator, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username, password, ok := r.BasicAuth(); ok {
				user, err := auth.Authenticate(r.Context(), username, password)
				if err != nil {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				next.ServeHTTP(w, withPrincipal(r, Principal{UserID: user.ID, Username: user.Username}))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if token, found := strings.CutPrefix(authHeader, "Bearer "); found && token != "" {
				claims, err := crypto.ValidateToken(token, jwtSecret)
				if err != nil {
					writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				userID, err := primitive.ObjectIDFromHex(claims.UserID)
				if err != nil {
					writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				next.ServeHTTP(w, withPrincipal(r, Principal{UserID: userID, Username: claims.Username}))
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="fleetminder"`)
			writeJSONError(w, http.StatusUnauthorized, "missing credentials")
		})
	}
}

func withPrincipal(r *http.Request, p Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// PrincipalFromContext extracts the authenticated principal from the request context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
