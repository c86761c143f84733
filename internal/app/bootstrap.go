package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"textmining/worker/internal/adapter/clarisa"
	"textmining/worker/internal/adapter/docstore"
	"textmining/worker/internal/adapter/gemini"
	"textmining/worker/internal/adapter/slack"
	wstore "textmining/worker/internal/adapter/weaviate"
	"textmining/worker/internal/config"
	"textmining/worker/internal/vector"
)

type Dependencies struct {
	VectorStore *wstore.Store
	NSQProducer *nsq.Producer
	Embedder    *gemini.Embedder
	Generator   *gemini.Generator
	Retriever   *docstore.Reader
	Validator   *clarisa.Service
	Notifier    *slack.Notifier
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Weaviate
	wCfg := weaviate.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
	wClient, err := weaviate.NewClient(wCfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}

	// Ensure Schema Retry
	store := wstore.NewStore(wClient)
	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	if err := EnsureSchemaWithRetry(ctx, store, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
		return nil, fmt.Errorf("weaviate schema error: %w", err)
	}

	// NSQ Producer
	nsqCfg := nsq.NewConfig()
	producer, err := nsq.NewProducer(cfg.NSQDHost, nsqCfg)
	if err != nil {
		return nil, fmt.Errorf("nsq producer error: %w", err)
	}

	// Topic pre-creation
	createTopics(cfg.NSQDHTTP)

	// Gemini
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder error: %w", err)
	}
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GenerationModel)
	if err != nil {
		return nil, fmt.Errorf("gemini generator error: %w", err)
	}

	// Document store
	retriever, err := docstore.NewReader(ctx, docstore.NewConverter(cfg.ConvertURL))
	if err != nil {
		return nil, fmt.Errorf("docstore reader error: %w", err)
	}

	return &Dependencies{
		VectorStore: store,
		NSQProducer: producer,
		Embedder:    embedder,
		Generator:   generator,
		Retriever:   retriever,
		Validator:   clarisa.NewService(clarisa.NewClient(cfg.ClarisaHost, cfg.ClarisaLogin, cfg.ClarisaPassword)),
		Notifier:    slack.NewNotifier(cfg.SlackWebhookURL, cfg.ServiceName),
	}, nil
}

func createTopics(nsqdHTTP string) {
	create := func(topic string) {
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
		resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}

	go func() {
		time.Sleep(2 * time.Second)
		create(config.TopicMiningTask)
	}()
}

// EnsureSchemaWithRetry keeps trying to install the reference schema until
// Weaviate is reachable or the attempts run out.
func EnsureSchemaWithRetry(ctx context.Context, client vector.SchemaClient, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = vector.EnsureReferenceSchema(ctx, client); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
