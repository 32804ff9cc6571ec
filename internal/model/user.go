package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a user document in the users collection. Users are the
// authentication principals for all vehicle operations; the scan never
// touches them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
	FullName     string             `bson:"full_name"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login. The token can be presented as
// a Bearer alternative to HTTP Basic on vehicle endpoints.
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// ToResponse converts a User document to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID.Hex(),
		Username: u.Username,
		FullName: u.FullName,
	}
}
