package rest

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/syntrixbase/wallpaper/internal/query"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// MockImageStore is a mock implementation of types.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Find(ctx context.Context, plan *query.Plan) ([]bson.M, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

func (m *MockImageStore) Get(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageStore) InsertMany(ctx context.Context, images []*model.Image) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

func (m *MockImageStore) DeleteByID(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImageStore) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockImageStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
