package mining_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"textmining/worker/internal/mining"
)

// Mocks

type MockRetriever struct{ mock.Mock }

func (m *MockRetriever) Fetch(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockStore struct{ mock.Mock }

func (m *MockStore) ReferenceExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateReferenceSet(ctx context.Context, records []mining.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockStore) AllReferenceRecords(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) CreateWorkingSet(ctx context.Context, name string, records []mining.Record) error {
	args := m.Called(ctx, name, records)
	return args.Error(0)
}

func (m *MockStore) Search(ctx context.Context, name string, vector []float32, limit int) ([]string, error) {
	args := m.Called(ctx, name, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) DropWorkingSet(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
