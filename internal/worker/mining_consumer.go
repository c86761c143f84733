package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"textmining/worker/internal/adapter/slack"
	"textmining/worker/internal/middleware"
	"textmining/worker/internal/mining"
)

// MiningConsumer handles mining task messages end to end: authenticate,
// run the pipeline, publish the correlated reply and notify the outcome.
// It always finishes messages (returns nil) so a failed task is reported
// to the requester instead of being redelivered.
type MiningConsumer struct {
	gate        Authenticator
	pipeline    Miner
	publisher   TaskPublisher
	notifier    Notifier
	serviceName string
}

func NewMiningConsumer(gate Authenticator, pipeline Miner, publisher TaskPublisher, notifier Notifier, serviceName string) *MiningConsumer {
	return &MiningConsumer{
		gate:        gate,
		pipeline:    pipeline,
		publisher:   publisher,
		notifier:    notifier,
		serviceName: serviceName,
	}
}

func (h *MiningConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload MiningTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	if payload.CorrelationID == "" {
		payload.CorrelationID = uuid.NewString()
	}

	ctx := middleware.WithCorrelationID(context.Background(), payload.CorrelationID)

	slog.InfoContext(ctx, "mining task received", "key", payload.Key, "bucket", payload.BucketName)

	result, err := h.process(ctx, payload)
	if err != nil {
		h.reportFailure(ctx, payload, err)
		return nil
	}

	h.reply(ctx, payload.ReplyTo, SuccessResponse{
		Status:        "success",
		Key:           payload.Key,
		ExtractedInfo: result.ExtractedInfo,
		TimeTaken:     result.Elapsed.Seconds(),
		CorrelationID: payload.CorrelationID,
	})

	h.notify(ctx, slack.PriorityLow, "Mining completed",
		fmt.Sprintf("Document %s processed by %s", payload.Key, h.serviceName), result.Elapsed)

	slog.InfoContext(ctx, "mining task completed", "key", payload.Key, "elapsed", result.Elapsed)
	return nil
}

func (h *MiningConsumer) process(ctx context.Context, payload MiningTaskPayload) (*mining.Result, error) {
	if payload.Key == "" || payload.BucketName == "" {
		return nil, fmt.Errorf("%w: key and bucketName are required", mining.ErrValidation)
	}

	identity, err := h.gate.Authenticate(ctx, payload.Credentials)
	if err != nil {
		return nil, err
	}

	prompt := payload.Prompt
	if prompt == "" {
		prompt = mining.DefaultPrompt
	}

	return h.pipeline.Process(ctx, mining.Request{
		Bucket:            payload.BucketName,
		Key:               payload.Key,
		Prompt:            prompt,
		CorrelationID:     payload.CorrelationID,
		Sender:            identity.Name,
		SenderEnvironment: identity.Environment,
	})
}

func (h *MiningConsumer) reportFailure(ctx context.Context, payload MiningTaskPayload, err error) {
	slog.ErrorContext(ctx, "mining task failed", "key", payload.Key, "error", err)

	message := err.Error()
	if errors.Is(err, mining.ErrAuthenticationFailed) {
		message = "Authentication failed"
	}

	var key *string
	if payload.Key != "" {
		key = &payload.Key
	}
	h.reply(ctx, payload.ReplyTo, ErrorResponse{
		Status:        "error",
		Key:           key,
		Error:         message,
		CorrelationID: payload.CorrelationID,
	})

	// The authentication gate already raised its own alert.
	if !errors.Is(err, mining.ErrAuthenticationFailed) {
		h.notify(ctx, slack.PriorityHigh, "Mining failed",
			fmt.Sprintf("Document %s failed in %s: %v", payload.Key, h.serviceName, err), 0)
	}
}

func (h *MiningConsumer) reply(ctx context.Context, replyTo string, response any) {
	if replyTo == "" {
		return
	}
	body, err := json.Marshal(response)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode reply", "error", err)
		return
	}
	if err := h.publisher.Publish(replyTo, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish reply", "topic", replyTo, "error", err)
	}
}

func (h *MiningConsumer) notify(ctx context.Context, priority, title, message string, elapsed time.Duration) {
	if err := h.notifier.NotifyTimed(ctx, priority, title, message, elapsed); err != nil {
		slog.ErrorContext(ctx, "failed to send notification", "title", title, "error", err)
	}
}
