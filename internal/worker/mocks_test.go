package worker_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"textmining/worker/internal/middleware"
	"textmining/worker/internal/mining"
)

// Mocks

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) Authenticate(ctx context.Context, credentials string) (*middleware.Identity, error) {
	args := m.Called(ctx, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*middleware.Identity), args.Error(1)
}

type MockMiner struct{ mock.Mock }

func (m *MockMiner) Process(ctx context.Context, req mining.Request) (*mining.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mining.Result), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyTimed(ctx context.Context, priority, title, message string, elapsed time.Duration) error {
	args := m.Called(ctx, priority, title, message, elapsed)
	return args.Error(0)
}
