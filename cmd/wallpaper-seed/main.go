package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/syntrixbase/wallpaper/internal/config"
	"github.com/syntrixbase/wallpaper/internal/logging"
	"github.com/syntrixbase/wallpaper/internal/seed"
	"github.com/syntrixbase/wallpaper/internal/storage/mongo"
)

func main() {
	configDir := flag.String("config", config.DefaultDir, "Configuration directory")
	count := flag.Int("count", 100, "Number of images to insert")
	batch := flag.Int("batch", seed.DefaultBatchSize, "Images per insert")
	baseURL := flag.String("base-url", seed.DefaultBaseURL, "Base URL of generated images")
	spread := flag.Duration("spread", 30*24*time.Hour, "Spread createdAt over this period before now")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	gen, err := seed.NewImageGenerator(*baseURL, *spread)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, gen, *count, *batch); err != nil {
		slog.Error("Seeding failed", "error", err)
		logging.Shutdown()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, gen *seed.ImageGenerator, count, batch int) error {
	provider, err := mongo.NewProvider(ctx, cfg.Storage.Mongo)
	if err != nil {
		return err
	}
	defer provider.Close(context.Background())

	start := time.Now()
	n, err := seed.Seed(ctx, provider.Images(), gen, count, batch)
	if err != nil {
		return fmt.Errorf("inserted %d of %d: %w", n, count, err)
	}
	slog.Info("Seeding complete", "inserted", n, "duration", time.Since(start))
	return nil
}
