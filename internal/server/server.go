package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/parley/internal/auth"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/config"
	"github.com/nfrund/parley/internal/database"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/logging"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/presence"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/websocket"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg config.Provider

	bus      *pubsub.WatermillBridge
	hub      *websocket.Hub
	registry *presence.Registry
	engine   *chat.Engine
	verifier *auth.Verifier

	authHandler    *handlers.AuthHandler
	historyHandler *chat.HistoryHandler

	cancelSubscriptions context.CancelFunc
}

// New creates a new Server instance with every service wired up.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.EnsureSchema(context.Background(), db, cfg.GetDBNs(), cfg.GetDBDb()); err != nil {
		slog.Error("Failed to apply database schema", "error", err)
		os.Exit(1)
	}

	userStore := database.NewSurrealUserStore(db, cfg.GetDBNs(), cfg.GetDBDb())
	messageStore := database.NewSurrealMessageStore(db, cfg.GetDBNs(), cfg.GetDBDb())

	tokens := auth.NewTokenManager(cfg.GetJWTSecret(), cfg.GetJWTExpiry())
	verifier := auth.NewVerifier(tokens, userStore)

	bus := pubsub.NewWatermillBridge()
	hub := websocket.NewHub(chat.DefaultRoom)
	registry := presence.NewRegistry(bus)
	engine := chat.NewEngine(messageStore, registry, bus, hub)

	// Presence snapshots and persisted messages travel over the bus; these
	// subscriptions fan them out to clients for the life of the process.
	subCtx, cancel := context.WithCancel(context.Background())
	presenceSub := chat.NewPresenceSubscriber(bus, hub)
	if err := presenceSub.Start(subCtx); err != nil {
		slog.Error("Failed to start presence subscriber", "error", err)
		cancel()
		os.Exit(1)
	}
	messageSub := chat.NewMessageSubscriber(bus, hub)
	if err := messageSub.Start(subCtx); err != nil {
		slog.Error("Failed to start message subscriber", "error", err)
		cancel()
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	return &Server{
		E:                   e,
		DB:                  db,
		Cfg:                 cfg,
		bus:                 bus,
		hub:                 hub,
		registry:            registry,
		engine:              engine,
		verifier:            verifier,
		authHandler:         handlers.NewAuthHandler(userStore, tokens),
		historyHandler:      chat.NewHistoryHandler(messageStore),
		cancelSubscriptions: cancel,
	}
}
