package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ruralpay/payments-engine/internal/config"
	"github.com/ruralpay/payments-engine/internal/database"
	mW "github.com/ruralpay/payments-engine/internal/middleware"
	"github.com/ruralpay/payments-engine/internal/services"
	"github.com/sirupsen/logrus"
)

// @title Payments Engine API
// @version 1.0
// @description Replays CSV operation files and reports final client balances
// @BasePath /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg.Log, os.Stderr)
	if err := cfg.JWT.Validate(); err != nil {
		log.WithError(err).Fatal("Set JWT_SECRET_KEY to start the server")
	}

	// Optional persistence
	var store services.RunStore
	if cfg.Database.Enabled {
		db, err := database.InitDB(cfg.Database, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()
		store = services.NewSnapshotService(db)
	}

	var cache services.RunCache
	if cfg.Redis.Enabled {
		if redisClient := database.InitRedis(context.Background(), cfg.Redis, log); redisClient != nil {
			defer redisClient.Close()
			cache = services.NewBreakerRunCache(
				services.NewRedisRunCache(redisClient, cfg.Runs.CacheTTL),
				cfg.Runs.BreakerFailures, cfg.Runs.BreakerTimeout, log,
			)
		}
	}

	runService := services.NewRunService(log, cache, store, cfg.Server.MaxUploadBytes)


	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]any{
			"status":   "healthy",
			"database": store != nil,
			"cache":    "disabled",
		}
		if breaker, ok := cache.(*services.BreakerRunCache); ok {
			health["cache"] = breaker.State()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.Auth(cfg.JWT.SecretKey, log))

		r.Post("/runs", runService.CreateRun)
		r.Get("/runs/{runId}", runService.GetRun)
		r.Get("/runs/{runId}/report.csv", runService.GetRunReport)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
