package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"community-api/internal/app"
)

// Startup covers config, the database ping and schema migration.
const startupTimeout = 30 * time.Second

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	application, err := app.New(ctx)
	cancel()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
