package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Start runs the HTTP server and blocks until a shutdown signal arrives,
// then drains everything with a timeout.
func (s *Server) Start() {
	go func() {
		if err := s.E.Start(s.Cfg.GetAddr()); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()
	slog.Info("Server started", "addr", s.Cfg.GetAddr())

	waitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.cancelSubscriptions()
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close pub/sub bus", "error", err)
	}
	s.DB.Close(ctx)
	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
}
