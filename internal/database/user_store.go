package database

import (
	"context"
	"fmt"

	"github.com/nfrund/parley/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// SurrealUserStore encapsulates database operations for users using SurrealDB.
type SurrealUserStore struct {
	db     *surrealdb.DB
	ns     string
	dbName string
}

// NewSurrealUserStore creates a new SurrealUserStore.
func NewSurrealUserStore(db *surrealdb.DB, ns, dbName string) *SurrealUserStore {
	return &SurrealUserStore{db: db, ns: ns, dbName: dbName}
}

// Create persists a new user. The caller is responsible for hashing the
// password before it reaches this layer. Returns domain.ErrUserAlreadyExists
// when the email or username is already taken.
func (s *SurrealUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	existing, err := QueryOne[domain.User](ctx, s.db,
		"SELECT * FROM user WHERE email = $email OR username = $username",
		map[string]any{"email": user.Email, "username": user.Username})
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	query := `
		CREATE user SET
			username = $username,
			email = $email,
			password = $password,
			createdAt = time::now()
		RETURN AFTER
	`
	params := map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"password": user.PasswordHash,
	}

	created, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("user was not created or could not be fetched")
	}

	return created, nil
}

// FindByEmail queries for a single user by their email address.
// Returns nil, nil when no user matches.
func (s *SurrealUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM user WHERE email = $email"
	params := map[string]any{"email": email}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return user, nil
}

// FindByID looks up a user by their full record id (e.g. "user:abc123").
// The id always originates from a verified token subject, never from raw
// client input.
func (s *SurrealUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM %s", id)
	user, err := QueryOne[domain.User](ctx, s.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	return user, nil
}
