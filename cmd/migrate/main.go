// migrate runs DB migrations from embedded SQL; use with go run ./cmd/migrate -direction up.
package main

import (
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/config"
	"github.com/jaehkim-quant/research-platform/internal/db/migrate"
	"github.com/jaehkim-quant/research-platform/internal/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	logger := logging.Must(os.Getenv("APP_ENV"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrate: no change", zap.String("direction", *direction))
			return
		}
		logger.Fatal("migrate", zap.String("direction", *direction), zap.Error(err))
	}
	logger.Info("migrate: done", zap.String("direction", *direction))
}
