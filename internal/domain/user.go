package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents a registered account in the application domain.
type User struct {
	ID           *surrealmodels.RecordID `json:"id,omitempty"`
	Username     string                  `json:"username"`
	Email        string                  `json:"email"`
	PasswordHash string                  `json:"password,omitempty"`
}

// Identity is the user view attached to a live connection. It is resolved
// once by the token verifier when the connection is established and never
// refreshed for the lifetime of that connection.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// TokenVerifier resolves an opaque bearer credential to an identity.
// Implementations must collapse every failure mode into a single generic
// error so the protocol boundary leaks nothing about why a credential
// was rejected.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}
