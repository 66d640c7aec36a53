package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	globalTestClient     *mongo.Client
	globalTestClientErr  error
	globalTestClientOnce sync.Once
)

// getGlobalTestClient returns a client shared by the package tests. Tests
// are skipped unless MONGODB_URI points at a reachable server.
func getGlobalTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("Skipping test: MONGODB_URI not set")
	}
	globalTestClientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, clientOptions(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
		}
		globalTestClient, globalTestClientErr = client, err
	})
	if globalTestClientErr != nil {
		t.Skipf("Skipping test: MongoDB not available: %v", globalTestClientErr)
	}
	return globalTestClient
}

type TestEnv struct {
	Client *mongo.Client
	DBName string
	DB     *mongo.Database
}

func setupTestEnv(t *testing.T) *TestEnv {
	client := getGlobalTestClient(t)
	t.Parallel()

	// Generate unique DB name
	safeName := strings.ReplaceAll(t.Name(), "/", "_")
	if len(safeName) > 20 {
		safeName = safeName[len(safeName)-20:]
	}
	dbName := fmt.Sprintf("test_wp_%s_%d", safeName, time.Now().UnixNano()%100000)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
	})

	return &TestEnv{
		Client: client,
		DBName: dbName,
		DB:     client.Database(dbName),
	}
}

// sharedClientStore does not close the shared client
type sharedClientStore struct {
	*imageStore
}

func (s *sharedClientStore) Close(context.Context) error { return nil }

func setupImageStore(t *testing.T) (*sharedClientStore, *TestEnv) {
	env := setupTestEnv(t)
	store := &sharedClientStore{&imageStore{client: env.Client, coll: env.DB.Collection("images")}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.EnsureIndexes(ctx))
	return store, env
}
