package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/syntrixbase/wallpaper/internal/api/rest"
	"github.com/syntrixbase/wallpaper/internal/config"
	"github.com/syntrixbase/wallpaper/internal/logging"
	"github.com/syntrixbase/wallpaper/internal/query"
	"github.com/syntrixbase/wallpaper/internal/query/schema"
	"github.com/syntrixbase/wallpaper/internal/server"
	"github.com/syntrixbase/wallpaper/internal/storage/mongo"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

func main() {
	// 0. Parse Command Line Flags
	configDir := flag.String("config", config.DefaultDir, "Configuration directory")
	host := flag.String("host", "", "Override the listen host (use 0.0.0.0 for containers)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}

	// 2. Logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Wallpaper API stopped with error", "error", err)
		logging.Shutdown()
		os.Exit(1)
	}
	slog.Info("Wallpaper API stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting Wallpaper API",
		"environment", cfg.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port)

	// 3. Storage
	provider, err := mongo.NewProvider(ctx, cfg.Storage.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := provider.Close(closeCtx); err != nil {
			slog.Warn("Failed to close storage", "error", err)
		}
	}()

	// 4. Query engine for the image routes
	kinds := schema.Flatten(schema.ShapeOf(model.Image{}), cfg.Query.MaxDepth)
	engine, err := query.NewEngine(kinds, nil, cfg.Query)
	if err != nil {
		return err
	}

	// 5. HTTP server
	srv := server.New(cfg.Server, slog.Default())
	rest.NewHandler(provider.Images(), engine, rest.Options{
		ExposeErrors: !cfg.Environment.IsProduction(),
		Logger:       slog.Default(),
	}).Register(srv.HTTPMux(), cfg.Server.BaseEndpoint)

	// Start blocks until ctx is canceled or the listener fails.
	startErr := srv.Start(ctx)

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Warn("Server forced to shutdown", "error", err)
	}

	return startErr
}
