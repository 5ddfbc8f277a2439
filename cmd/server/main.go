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

	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/config"
	httpDelivery "github.com/sodam/backend/internal/delivery/http"
	"github.com/sodam/backend/internal/infrastructure/cache"
	"github.com/sodam/backend/internal/infrastructure/store"
	"github.com/sodam/backend/internal/logging"
	"github.com/sodam/backend/internal/usecase"
)

var log = logrus.WithField("prefix", "main")

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	log.Info("Starting Sodam Backend v1.0.0")
	log.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"cache":       cfg.Cache.Type,
		"cache_ttl":   cfg.Cache.TTL.String(),
	}).Info("configuration loaded")

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	users, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer users.Close()
	log.WithField("path", cfg.Database.Path).Info("user store ready")

	// Initialize usecase layer
	scoringService := usecase.NewScoringService(memoryCache, usecase.ScoringServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Weights:  cfg.Scoring.Weights,
	})
	authService := usecase.NewAuthService(users, usecase.AuthServiceConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	// The dashboard page scores in-process; cmd/dashboard is the HTTP client
	handler := httpDelivery.NewHandler(scoringService, authService, usecase.NewLocalRecsAPI(scoringService))

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, authService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}
