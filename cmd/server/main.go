package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/inkwell/backend/internal/router"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/anonto42/inkwell/backend/pkg/firebase"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if _, err := logger.Init(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when run exits

	deps := router.Dependencies{Config: cfg, DB: db}
	if cfg.FirebaseCredentialsPath != "" {
		verifier, err := firebase.NewVerifier(ctx, firebase.Options{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
			CheckRevoked:    cfg.FirebaseCheckRevoked,
		})
		if err != nil {
			return err
		}
		deps.Firebase = verifier
	} else {
		logger.Info("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
	}

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	srv, err := router.New(setupCtx, deps)
	cancel()
	if err != nil {
		return err
	}

	srv.Dispatcher.Start()
	srv.Publisher.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	srv.Publisher.Stop()
	// Handlers are done, so nothing emits anymore; drain queued notifications.
	if err := srv.Dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("notification queue not fully drained", zap.Error(err))
	}
	logger.Info("server stopped cleanly")
	return nil
}
