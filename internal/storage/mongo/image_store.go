package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syntrixbase/wallpaper/internal/query"
	"github.com/syntrixbase/wallpaper/internal/storage/types"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

type imageStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewImageStore wraps an existing collection. The caller owns the client.
func NewImageStore(client *mongo.Client, coll *mongo.Collection) types.ImageStore {
	return &imageStore{client: client, coll: coll}
}

func (s *imageStore) Find(ctx context.Context, plan *query.Plan) ([]bson.M, error) {
	var (
		cursor *mongo.Cursor
		err    error
	)
	if len(plan.Embed) > 0 {
		cursor, err = s.coll.Aggregate(ctx, plan.Pipeline())
	} else {
		filter := plan.Filter
		if filter == nil {
			filter = bson.M{}
		}
		cursor, err = s.coll.Find(ctx, filter, plan.FindOptions())
	}
	if err != nil {
		return nil, wrapQueryError(err)
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, wrapQueryError(err)
	}
	return results, nil
}

func (s *imageStore) Get(ctx context.Context, id string) (*model.Image, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var img model.Image
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&img); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, model.WrapError(err)
	}
	return &img, nil
}

func (s *imageStore) InsertMany(ctx context.Context, images []*model.Image) error {
	if len(images) == 0 {
		return nil
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, len(images))
	for i, img := range images {
		if img.ID.IsZero() {
			img.ID = primitive.NewObjectID()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
		if img.UpdatedAt.IsZero() {
			img.UpdatedAt = img.CreatedAt
		}
		docs[i] = img
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return model.WrapError(err)
}

func (s *imageStore) DeleteByID(ctx context.Context, id string) (*model.Image, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var img model.Image
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&img); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, model.WrapError(err)
	}
	return &img, nil
}

func (s *imageStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseID(id)
		if err != nil {
			return 0, err
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return 0, nil
	}

	result, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, model.WrapError(err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes
func (s *imageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "publicId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("publicId_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure image indexes: %w", err)
	}
	return nil
}

func (s *imageStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// badQueryCodes are server error codes caused by the query itself:
// BadValue and invalid regular expressions.
var badQueryCodes = []int{2, 51091}

// wrapQueryError maps errors the server raises for a malformed query to
// model.ErrInvalidQuery.
func wrapQueryError(err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range badQueryCodes {
			if se.HasErrorCode(code) {
				return fmt.Errorf("%w: %v", model.ErrInvalidQuery, err)
			}
		}
	}
	return model.WrapError(err)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}
	return oid, nil
}
