package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobtailor/internal/config"
	"go-jobtailor/internal/database"
	"go-jobtailor/internal/httpapi"
	"go-jobtailor/internal/logger"
	"go-jobtailor/internal/search"
	"go-jobtailor/internal/sources"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("server")
	if err := run(ctx, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	deps := httpapi.Deps{
		DefaultLocation: cfg.Search.DefaultLocation,
		RecencyHours:    cfg.Search.RecencyHours,
		RequestTimeout:  cfg.Server.RequestTimeout,
		Logger:          log,
	}

	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Store = repo
	} else {
		log.Warn("DATABASE_URL not set, tracked jobs and saved searches are disabled")
	}

	agg := sources.NewAggregator(cfg, log)
	deps.Searcher = agg
	deps.Runner = search.NewRunner(agg, cfg.Search.RecencyHours, log)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
