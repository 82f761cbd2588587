package auth

import (
	"context"
	"log/slog"

	"github.com/nfrund/parley/internal/domain"
)

// Verifier is the connection gate's token verifier. It validates the token
// signature, then resolves the subject against the user store so the identity
// bound to the connection reflects a user that still exists. Every failure
// collapses to domain.ErrInvalidCredentials; the reason is logged server-side
// only.
type Verifier struct {
	tokens *TokenManager
	users  domain.UserRepository
}

// NewVerifier creates a Verifier.
func NewVerifier(tokens *TokenManager, users domain.UserRepository) *Verifier {
	return &Verifier{tokens: tokens, users: users}
}

// Verify implements domain.TokenVerifier.
func (v *Verifier) Verify(ctx context.Context, credential string) (*domain.Identity, error) {
	if credential == "" {
		return nil, domain.ErrInvalidCredentials
	}

	claims, err := v.tokens.Parse(credential)
	if err != nil {
		slog.Debug("Token verification failed", "error", err)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := v.users.FindByID(ctx, claims.Subject)
	if err != nil {
		slog.Debug("Token subject could not be resolved", "subject", claims.Subject, "error", err)
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.Identity{
		UserID:   user.ID.String(),
		Username: user.Username,
	}, nil
}
