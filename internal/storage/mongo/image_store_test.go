package mongo

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/syntrixbase/wallpaper/internal/query"
	qconfig "github.com/syntrixbase/wallpaper/internal/query/config"
	"github.com/syntrixbase/wallpaper/internal/query/schema"
	storageconfig "github.com/syntrixbase/wallpaper/internal/storage/config"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseID("not-an-id")
	assert.True(t, errors.Is(err, model.ErrInvalidID))
	assert.Contains(t, err.Error(), "not-an-id")
}

func TestWrapQueryError(t *testing.T) {
	for _, code := range []int32{2, 51091} {
		err := wrapQueryError(mongo.CommandError{Code: code, Message: "Regular expression is invalid"})
		assert.ErrorIs(t, err, model.ErrInvalidQuery, "code %d", code)
		assert.Contains(t, err.Error(), "Regular expression is invalid")
	}

	err := wrapQueryError(mongo.CommandError{Code: 13, Message: "unauthorized"})
	assert.NotErrorIs(t, err, model.ErrInvalidQuery)

	err = wrapQueryError(errors.New("connection reset"))
	assert.NotErrorIs(t, err, model.ErrInvalidQuery)
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions("mongodb://localhost:27017")
	require.NotNil(t, opts.BSONOptions)
	assert.True(t, opts.BSONOptions.DefaultDocumentM)
	assert.Equal(t, []string{"localhost:27017"}, opts.Hosts)
}

func TestNewProvider_Error(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewProvider(ctx, storageconfig.MongoConfig{
		URI:              "mongodb://invalid-host:27017",
		DatabaseName:     "db",
		ImagesCollection: "images",
	})
	assert.Error(t, err)
}

func seedImages(t *testing.T, store *sharedClientStore) []*model.Image {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	images := []*model.Image{
		{URL: "https://cdn/a.jpg", PublicID: "a", Width: 1920, Height: 1080, Format: "jpg", Bytes: 1000, CreatedAt: base},
		{URL: "https://cdn/b.png", PublicID: "b", Width: 3840, Height: 2160, Format: "png", Bytes: 5000, CreatedAt: base.Add(time.Hour)},
		{URL: "https://cdn/c.jpg", PublicID: "c", Width: 1280, Height: 720, Format: "jpg", Bytes: 400, CreatedAt: base.Add(2 * time.Hour)},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.InsertMany(ctx, images))
	for _, img := range images {
		require.False(t, img.ID.IsZero())
		require.False(t, img.UpdatedAt.IsZero())
	}
	return images
}

func imageEngine(t *testing.T, relations map[string]query.Relation) *query.Engine {
	t.Helper()
	kinds := schema.Flatten(schema.ShapeOf(model.Image{}), schema.MaxDepth)
	e, err := query.NewEngine(kinds, relations, qconfig.Config{})
	require.NoError(t, err)
	return e
}

func TestImageStore_Find(t *testing.T) {
	store, _ := setupImageStore(t)
	seedImages(t, store)
	e := imageEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c"}},
		{"format=jpg&sort[publicId]=desc", []string{"c", "a"}},
		{"width[gte]=1920&sort[]=width", []string{"a", "b"}},
		{"or[0][format]=png&or[1][bytes][lt]=500&sort[]=publicId", []string{"b", "c"}},
		{"url[regex]=B\\.PNG$&url[options]=i", []string{"b"}},
		{"sort[]=-createdAt&page=2&limit=1", []string{"b"}},
		{"createdAt[gt]=2024-01-01T00:30:00Z&sort[]=createdAt", []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			plan, err := e.ParseValues(values)
			require.NoError(t, err)

			docs, err := store.Find(ctx, plan)
			require.NoError(t, err)

			got := make([]string, len(docs))
			for i, d := range docs {
				got[i] = d["publicId"].(string)
			}
			if len(tt.want) > 1 && plan.Sort == nil {
				assert.ElementsMatch(t, tt.want, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestImageStore_FindSelect(t *testing.T) {
	store, _ := setupImageStore(t)
	seedImages(t, store)
	e := imageEngine(t, nil)

	plan, err := e.ParseValues(url.Values{"select": {"publicId", "-_id"}, "publicId": {"a"}})
	require.NoError(t, err)

	docs, err := store.Find(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, bson.M{"publicId": "a"}, docs[0])
}

func TestImageStore_FindEmbed(t *testing.T) {
	store, env := setupImageStore(t)
	images := seedImages(t, store)
	ctx := context.Background()

	_, err := env.DB.Collection("variants").InsertMany(ctx, []interface{}{
		bson.M{"image": images[0].ID, "size": "thumb"},
		bson.M{"image": images[0].ID, "size": "full"},
		bson.M{"image": images[1].ID, "size": "thumb"},
	})
	require.NoError(t, err)

	e := imageEngine(t, map[string]query.Relation{
		"variants": {
			Collection:   "variants",
			LocalField:   "_id",
			ForeignField: "image",
			Kinds:        model.FieldKinds{"_id": model.KindString, "size": model.KindString},
		},
	})

	values, err := url.ParseQuery("publicId=a&embed[path]=variants&embed[match][size]=thumb&embed[select]=size+-_id")
	require.NoError(t, err)
	plan, err := e.ParseValues(values)
	require.NoError(t, err)

	docs, err := store.Find(ctx, plan)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, bson.A{bson.M{"size": "thumb"}}, docs[0]["variants"])
}

func TestImageStore_GetAndDelete(t *testing.T) {
	store, _ := setupImageStore(t)
	images := seedImages(t, store)
	ctx := context.Background()

	got, err := store.Get(ctx, images[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a", got.PublicID)
	assert.Equal(t, images[0].CreatedAt, got.CreatedAt)

	_, err = store.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = store.Get(ctx, "zzz")
	assert.ErrorIs(t, err, model.ErrInvalidID)

	deleted, err := store.DeleteByID(ctx, images[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.PublicID)

	_, err = store.DeleteByID(ctx, images[0].ID.Hex())
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := store.DeleteMany(ctx, []string{images[1].ID.Hex(), images[2].ID.Hex(), primitive.NewObjectID().Hex()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.DeleteMany(ctx, []string{"bad"})
	assert.ErrorIs(t, err, model.ErrInvalidID)

	n, err = store.DeleteMany(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImageStore_DuplicatePublicID(t *testing.T) {
	store, _ := setupImageStore(t)
	seedImages(t, store)

	err := store.InsertMany(context.Background(), []*model.Image{{PublicID: "a", URL: "dup"}})
	assert.Error(t, err)
}

func TestImageStore_Canceled(t *testing.T) {
	store, _ := setupImageStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Find(ctx, &query.Plan{})
	assert.ErrorIs(t, err, model.ErrCanceled)
}
