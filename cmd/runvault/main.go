// Package main is the entry point for the vault API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"runvault/internal/cache"
	"runvault/internal/config"
	"runvault/internal/database"
	"runvault/internal/handlers"
	"runvault/internal/router"
	"runvault/internal/service"
	"runvault/internal/storage"
	"runvault/internal/store"
)

func main() {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the download-URL cache. Optional: without it
	// every read presigns fresh URLs.
	var urlCache *cache.URLCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, download URLs will not be cached", "error", err)
	} else {
		defer valkeyClient.Close()
		urlCache = cache.NewURLCache(valkeyClient, cache.DefaultURLTTL)
	}

	// Connect to S3-compatible object storage.
	var objects service.ObjectStore = service.NoStorage{}
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, photo uploads disabled")
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	folderStore := store.NewFolderStore(db)
	photoStore := store.NewPhotoStore(db)
	runStore := store.NewRunStore(db)
	treeWalker := store.NewTreeWalker(db)

	// Services.
	vaultService := service.NewVaultService(folderStore, photoStore, runStore, treeWalker, objects, urlCache)
	mediaService := service.NewMediaService(photoStore, runStore, folderStore, objects, urlCache)
	runService := service.NewRunService(runStore, photoStore, vaultService, objects, urlCache)

	// Handler groups.
	vaultHandlers := handlers.NewVault(vaultService, mediaService)
	photoHandlers := handlers.NewPhotos(mediaService)
	runHandlers := handlers.NewRuns(runService, mediaService)

	// Set up the Chi router with all middleware and routes.
	r := router.New(userStore, vaultHandlers, photoHandlers, runHandlers)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
