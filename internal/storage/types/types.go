package types

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/syntrixbase/wallpaper/internal/query"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// ImageStore defines the interface for image storage operations
type ImageStore interface {
	// Find runs a compiled query plan. Documents are returned as raw maps
	// since projections and embeds change their shape.
	Find(ctx context.Context, plan *query.Plan) ([]bson.M, error)

	// Get retrieves an image by its hex ObjectID
	Get(ctx context.Context, id string) (*model.Image, error)

	// InsertMany stores images, assigning ids and timestamps when missing
	InsertMany(ctx context.Context, images []*model.Image) error

	// DeleteByID removes one image and returns it
	DeleteByID(ctx context.Context, id string) (*model.Image, error)

	// DeleteMany removes the images with the given ids and returns how many
	// were deleted
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}

// Provider gives access to the stores of one backend
type Provider interface {
	Images() ImageStore
	Close(ctx context.Context) error
}
