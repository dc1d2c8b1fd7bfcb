package main

import (
	"fmt"
	"os"

	"github.com/genlink-dev/genlink/internal/config"
	"github.com/genlink-dev/genlink/internal/logger"
	"github.com/genlink-dev/genlink/internal/stubapi"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := stubapi.New(cfg.Stub.DatabaseURL, cfg.Stub.JWTSecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stub server")
	}

	log.Info().
		Str("version", version).
		Str("addr", cfg.Stub.Address).
		Str("database", cfg.Stub.DatabaseURL).
		Msg("Starting GenLink stub API...")

	if err := srv.Run(cfg.Stub.Address); err != nil {
		log.Fatal().Err(err).Msg("Stub server failed")
	}
}
