package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/websocket"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(10)
	requireAuth := middleware.Auth(s.verifier)

	api := s.E.Group("/api")

	api.POST("/auth/register", s.authHandler.Register, rateLimiter)
	api.POST("/auth/login", s.authHandler.Login, rateLimiter)
	api.GET("/auth/me", s.authHandler.Me, requireAuth)

	api.GET("/messages", s.historyHandler.List, requireAuth)
	api.GET("/messages/:room", s.historyHandler.List, requireAuth)

	// The gate inside the handler authenticates before the upgrade.
	s.E.GET("/ws", websocket.Handler(s.hub, s.verifier, s.engine))

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
