package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"linkr/internal/api"
	"linkr/internal/api/handlers"
	"linkr/internal/api/middleware"
	"linkr/internal/engine/analytics"
	"linkr/internal/engine/links"
	"linkr/internal/engine/redirect"
	"linkr/internal/pkg/geoip"
	"linkr/internal/pkg/logger"
	"linkr/internal/pkg/tasks"
	"linkr/internal/platform/config"
	"linkr/internal/platform/database"
)

func main() {
	configPath := "configs/config.yaml"
	if v := os.Getenv("LINKR_CONFIG"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	linkRepo := links.NewRepository(db)
	scanRepo := analytics.NewRepository(db)

	// Engine
	pool := tasks.NewPool(cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	cache := redirect.NewLinkCache(cfg.Cache.LinkTTL)
	scanLogger := redirect.NewScanLogger(scanRepo)
	dispatcher := redirect.NewDispatcher(linkRepo, cache, scanLogger, pool, cfg.Server.StoreTimeout)

	linkService := links.NewService(linkRepo, cache)
	analyticsService := analytics.NewService(scanRepo)

	// Handlers
	deps := &api.Dependencies{
		LinkHandler:      handlers.NewLinkHandler(linkService, dispatcher, cfg.Domains.ShortDomain),
		AnalyticsHandler: handlers.NewAnalyticsHandler(linkService, analyticsService),
		RedirectHandler:  handlers.NewRedirectHandler(dispatcher, geoip.NewNoopResolver()),
		HealthHandler:    handlers.NewHealthHandler(db),
		RedirectLimiter:  middleware.NewRateLimiter(cfg.RateLimit.RedirectPerMinute),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	// Drain scan logging and cache priming before closing the database.
	pool.Close()
}
