package worker

import (
	"context"
	"time"

	"textmining/worker/internal/middleware"
	"textmining/worker/internal/mining"
)

type Authenticator interface {
	Authenticate(ctx context.Context, credentials string) (*middleware.Identity, error)
}

type Miner interface {
	Process(ctx context.Context, req mining.Request) (*mining.Result, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type Notifier interface {
	NotifyTimed(ctx context.Context, priority, title, message string, elapsed time.Duration) error
}
