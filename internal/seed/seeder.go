package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/wallpaper/internal/storage/types"
)

// DefaultBatchSize is the number of images inserted per InsertMany call.
const DefaultBatchSize = 500

// Seed inserts count generated images into store in batches and returns how
// many were inserted. It stops at the first failed batch.
func Seed(ctx context.Context, store types.ImageStore, gen *ImageGenerator, count, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	inserted := 0
	for inserted < count {
		n := min(batchSize, count-inserted)
		if err := store.InsertMany(ctx, gen.GenerateBatch(n)); err != nil {
			return inserted, fmt.Errorf("insert batch at %d: %w", inserted, err)
		}
		inserted += n
		slog.Debug("Seeded images", "inserted", inserted, "total", count)
	}
	return inserted, nil
}
