package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"linkr/internal/engine/analytics"
	"linkr/internal/engine/links"
	"linkr/internal/pkg/logger"
	"linkr/internal/platform/config"
	"linkr/internal/platform/database"
	"linkr/internal/workers"
)

func main() {
	configPath := "configs/config.yaml"
	if v := os.Getenv("LINKR_CONFIG"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	purger := workers.NewPurger(
		links.NewRepository(db),
		analytics.NewRepository(db),
		cfg.Retention.PurgeGrace,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("interval", cfg.Retention.SweepInterval).Msg("purge worker starting")

	ticker := time.NewTicker(cfg.Retention.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("purge worker stopping")
			return
		case <-ticker.C:
			if _, err := purger.PurgeExpired(ctx); err != nil {
				log.Error().Err(err).Msg("purge sweep failed")
			}
		}
	}
}
