package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/domain"
)

// UserContextKey is the echo context key holding the authenticated identity.
const UserContextKey = "user"

// Auth creates a middleware that protects API routes requiring a bearer
// token. Failures produce the same generic 401 regardless of cause.
func Auth(verifier domain.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			}

			identity, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			}

			c.Set(UserContextKey, identity)
			return next(c)
		}
	}
}

// IdentityFromContext returns the authenticated identity set by Auth, or nil.
func IdentityFromContext(c echo.Context) *domain.Identity {
	identity, _ := c.Get(UserContextKey).(*domain.Identity)
	return identity
}
