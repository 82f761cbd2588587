package server

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// waitForShutdown blocks until an interrupt or terminate signal arrives and
// logs which one triggered the drain.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	slog.Info("Shutdown signal received", "signal", sig.String())
}
