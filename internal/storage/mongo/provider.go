package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syntrixbase/wallpaper/internal/storage/config"
	"github.com/syntrixbase/wallpaper/internal/storage/types"
)

type provider struct {
	client *mongo.Client
	images *imageStore
}

// NewProvider connects to MongoDB, verifies the connection and prepares the
// image collection indexes.
func NewProvider(ctx context.Context, cfg config.MongoConfig) (types.Provider, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, clientOptions(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := &imageStore{
		client: client,
		coll:   client.Database(cfg.DatabaseName).Collection(cfg.ImagesCollection),
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &provider{client: client, images: store}, nil
}

// clientOptions decodes nested documents as bson.M so query results encode
// to JSON as plain objects.
func clientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
}

func (p *provider) Images() types.ImageStore {
	return p.images
}

func (p *provider) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}
