package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/oliver/ghfeed/internal/adapter/djia"
	httpadapter "github.com/oliver/ghfeed/internal/adapter/http"
	"github.com/oliver/ghfeed/internal/config"
	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/feed"
	"github.com/oliver/ghfeed/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := djia.NewClient(cfg.DJIABaseURL, cfg.DJIATimeout, metrics, logger)
	cache := djia.NewCachedSource(client, clock, metrics, logger)

	if cfg.SeedFile != "" {
		n, err := cache.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.Error("failed to load seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		logger.Info("seed file loaded", "path", cfg.SeedFile, "entries", n)
	}

	search := domain.NewNearestSearch(domain.NewGenerator(cache), logger)
	builder := feed.NewBuilder(search, cfg.SiteURL, clock, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, builder, search, cache, cache,
		cfg.SiteURL, clock, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
