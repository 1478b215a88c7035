// migrate applies or rolls back the embedded SQL migrations: go run ./cmd/migrate -direction up|down.
package main

import (
	"flag"
	"log/slog"
	"os"

	"auth-session-service/internal/config"
	"auth-session-service/internal/db/migrate"
	"auth-session-service/internal/platform/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		logger.Error("invalid flag", "error", err)
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set; create a .env or export DATABASE_URL")
		os.Exit(1)
	}
	if err := migrate.Run(cfg.DatabaseURL, dir); err != nil {
		logger.Error("migrate", "direction", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "direction", dir)
}
