package worker_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"textmining/worker/internal/adapter/slack"
	"textmining/worker/internal/middleware"
	"textmining/worker/internal/mining"
	"textmining/worker/internal/worker"
)

func taskMessage(t *testing.T, payload worker.MiningTaskPayload) *nsq.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return &nsq.Message{Body: body}
}

func TestMiningConsumer_Success(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, `{"username":"svc-a","password":"pw"}`).
		Return(&middleware.Identity{Name: "Service A", Environment: "PROD"}, nil)
	miner.On("Process", mock.Anything, mock.MatchedBy(func(req mining.Request) bool {
		return req.Bucket == "docs" && req.Key == "report.pdf" &&
			req.Prompt == "extract indicators" && req.CorrelationID == "corr-1" &&
			req.Sender == "Service A" && req.SenderEnvironment == "PROD"
	})).Return(&mining.Result{ExtractedInfo: "mined text", Elapsed: 3 * time.Second}, nil)

	pub.On("Publish", "replies.mining", mock.MatchedBy(func(body []byte) bool {
		var resp worker.SuccessResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return false
		}
		return resp.Status == "success" && resp.Key == "report.pdf" &&
			resp.ExtractedInfo == "mined text" && resp.CorrelationID == "corr-1" &&
			resp.TimeTaken == 3.0
	})).Return(nil)
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityLow, "Mining completed", mock.Anything, 3*time.Second).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:           "report.pdf",
		BucketName:    "docs",
		Prompt:        "extract indicators",
		Credentials:   `{"username":"svc-a","password":"pw"}`,
		CorrelationID: "corr-1",
		ReplyTo:       "replies.mining",
	}))

	assert.NoError(t, err)
	gate.AssertExpectations(t)
	miner.AssertExpectations(t)
	pub.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestMiningConsumer_DefaultPromptWhenOmitted(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, mock.Anything).
		Return(&middleware.Identity{Name: "Service A"}, nil)
	miner.On("Process", mock.Anything, mock.MatchedBy(func(req mining.Request) bool {
		return req.Prompt == mining.DefaultPrompt
	})).Return(&mining.Result{ExtractedInfo: "ok"}, nil)
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityLow, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:         "report.pdf",
		BucketName:  "docs",
		Credentials: `{"username":"a","password":"b"}`,
	}))

	assert.NoError(t, err)
	miner.AssertExpectations(t)
	// No reply_to, so nothing is published.
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMiningConsumer_AuthenticationFailure(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: invalid credentials", mining.ErrAuthenticationFailed))
	pub.On("Publish", "replies.mining", mock.MatchedBy(func(body []byte) bool {
		var resp worker.ErrorResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return false
		}
		return resp.Status == "error" && resp.Error == "Authentication failed" &&
			resp.CorrelationID == "corr-2" && resp.Key != nil && *resp.Key == "report.pdf"
	})).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:           "report.pdf",
		BucketName:    "docs",
		Credentials:   `{"username":"a","password":"wrong"}`,
		CorrelationID: "corr-2",
		ReplyTo:       "replies.mining",
	}))

	assert.NoError(t, err)
	// The gate already alerted; the consumer must not raise a second alarm
	// and the pipeline must never run.
	notifier.AssertNotCalled(t, "NotifyTimed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	miner.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestMiningConsumer_PipelineFailure(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, mock.Anything).
		Return(&middleware.Identity{Name: "Service A"}, nil)
	miner.On("Process", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: object missing", mining.ErrNotFound))
	pub.On("Publish", "replies.mining", mock.MatchedBy(func(body []byte) bool {
		var resp worker.ErrorResponse
		return json.Unmarshal(body, &resp) == nil && resp.Status == "error" && resp.CorrelationID == "corr-3"
	})).Return(nil)
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityHigh, "Mining failed", mock.Anything, mock.Anything).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:           "missing.pdf",
		BucketName:    "docs",
		Credentials:   `{"username":"a","password":"b"}`,
		CorrelationID: "corr-3",
		ReplyTo:       "replies.mining",
	}))

	assert.NoError(t, err)
	pub.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestMiningConsumer_MissingKeyRejected(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	pub.On("Publish", "replies.mining", mock.MatchedBy(func(body []byte) bool {
		var resp worker.ErrorResponse
		return json.Unmarshal(body, &resp) == nil && resp.Status == "error" && resp.Key == nil
	})).Return(nil)
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityHigh, "Mining failed", mock.Anything, mock.Anything).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		BucketName:  "docs",
		Credentials: `{"username":"a","password":"b"}`,
		ReplyTo:     "replies.mining",
	}))

	assert.NoError(t, err)
	gate.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	miner.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestMiningConsumer_GeneratesCorrelationIDWhenMissing(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, mock.Anything).
		Return(&middleware.Identity{Name: "Service A"}, nil)
	miner.On("Process", mock.Anything, mock.MatchedBy(func(req mining.Request) bool {
		return req.CorrelationID != ""
	})).Return(&mining.Result{ExtractedInfo: "ok"}, nil)
	pub.On("Publish", "replies.mining", mock.MatchedBy(func(body []byte) bool {
		var resp worker.SuccessResponse
		return json.Unmarshal(body, &resp) == nil && resp.CorrelationID != ""
	})).Return(nil)
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityLow, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:         "report.pdf",
		BucketName:  "docs",
		Credentials: `{"username":"a","password":"b"}`,
		ReplyTo:     "replies.mining",
	}))

	assert.NoError(t, err)
	miner.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestMiningConsumer_PoisonPill(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	err := consumer.HandleMessage(&nsq.Message{Body: []byte("invalid json")})
	assert.NoError(t, err) // Should return nil (ack)

	gate.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMiningConsumer_EmptyBody(t *testing.T) {
	consumer := worker.NewMiningConsumer(new(MockAuthenticator), new(MockMiner), new(MockPublisher), new(MockNotifier), "textmining")
	assert.NoError(t, consumer.HandleMessage(&nsq.Message{Body: nil}))
}

func TestMiningConsumer_PublishFailureStillFinishes(t *testing.T) {
	gate := new(MockAuthenticator)
	miner := new(MockMiner)
	pub := new(MockPublisher)
	notifier := new(MockNotifier)
	consumer := worker.NewMiningConsumer(gate, miner, pub, notifier, "textmining")

	gate.On("Authenticate", mock.Anything, mock.Anything).
		Return(&middleware.Identity{Name: "Service A"}, nil)
	miner.On("Process", mock.Anything, mock.Anything).
		Return(&mining.Result{ExtractedInfo: "ok"}, nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nsqd down"))
	notifier.On("NotifyTimed", mock.Anything, slack.PriorityLow, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := consumer.HandleMessage(taskMessage(t, worker.MiningTaskPayload{
		Key:         "report.pdf",
		BucketName:  "docs",
		Credentials: `{"username":"a","password":"b"}`,
		ReplyTo:     "replies.mining",
	}))

	assert.NoError(t, err)
}
