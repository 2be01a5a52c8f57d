package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/salesledger/internal/api"
	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/config"
	"github.com/mmynk/salesledger/internal/middleware"
	"github.com/mmynk/salesledger/internal/service"
	"github.com/mmynk/salesledger/internal/storage/sqlite"
	"github.com/mmynk/salesledger/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logging.Setup(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.UsingDevSecret() {
		logger.Warn("Using built-in development JWT secret; set SALES_JWT_SECRET in production")
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DB.Path)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	authenticator := auth.NewPasswordAuthenticator(store, 0)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.Deps{
		Auth:    service.NewAuthService(authenticator, jwtManager, store, logger),
		Sales:   service.NewSaleService(store, logger),
		JWT:     jwtManager,
		Store:   store,
		Metrics: middleware.NewMetrics(),
		Logger:  logger,
	})

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr, "token_ttl", cfg.JWT.TTL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
