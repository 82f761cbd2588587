package chat

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/database"
	"github.com/nfrund/parley/internal/domain"
	"github.com/nfrund/parley/internal/middleware"
)

// HistoryHandler serves the message-history REST endpoint.
type HistoryHandler struct {
	store domain.MessageRepository
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(store domain.MessageRepository) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List handles GET /api/messages/:room. The room defaults to the well-known
// label and an optional ?limit= caps the page size. Messages come back
// oldest-first, ready to render top to bottom.
func (h *HistoryHandler) List(c echo.Context) error {
	room := c.Param("room")
	if room == "" {
		room = DefaultRoom
	}

	limit := database.DefaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "limit must be a positive integer"})
		}
		limit = parsed
	}

	messages, err := h.store.List(c.Request().Context(), room, limit)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to list messages", "room", room, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to load messages"})
	}

	if messages == nil {
		messages = []*domain.Message{}
	}
	return c.JSON(http.StatusOK, messages)
}
