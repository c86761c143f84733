package app

import (
	"context"
	"log/slog"

	"github.com/nsqio/go-nsq"

	wstore "textmining/worker/internal/adapter/weaviate"
	"textmining/worker/internal/config"
	"textmining/worker/internal/middleware"
	"textmining/worker/internal/mining"
	"textmining/worker/internal/worker"
)

type App struct {
	Consumer *worker.MiningConsumer

	cfg      *config.Config
	producer *nsq.Producer
}

func New(cfg *config.Config, deps *Dependencies) *App {
	refs := mining.NewInitializer(
		deps.Retriever,
		deps.Embedder,
		deps.VectorStore,
		cfg.ReferenceBucket,
		cfg.ReferenceRegionsKey,
		cfg.ReferenceCountriesKey,
	)

	pipeline := mining.NewPipeline(
		deps.Retriever,
		deps.Embedder,
		deps.Generator,
		deps.VectorStore,
		refs,
		wstore.WorkingSetName,
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		cfg.SearchTopK,
	)

	gate := middleware.NewGate(deps.Validator, deps.Notifier, cfg.ServiceName)
	consumer := worker.NewMiningConsumer(gate, pipeline, deps.NSQProducer, deps.Notifier, cfg.ServiceName)

	return &App{
		Consumer: consumer,
		cfg:      cfg,
		producer: deps.NSQProducer,
	}
}

// Run subscribes to the mining task topic and blocks until ctx is cancelled.
// Tasks are processed one at a time; retries are never requested, so every
// message is handled at most once.
func (a *App) Run(ctx context.Context) error {
	nsqCfg := nsq.NewConfig()
	nsqCfg.MaxInFlight = 1

	consumer, err := nsq.NewConsumer(config.TopicMiningTask, config.ChannelWorker, nsqCfg)
	if err != nil {
		return err
	}
	consumer.AddHandler(a.Consumer)

	if err := consumer.ConnectToNSQLookupd(a.cfg.NSQLookupd); err != nil {
		return err
	}

	slog.Info("worker started", "topic", config.TopicMiningTask, "channel", config.ChannelWorker)

	<-ctx.Done()
	slog.Info("shutting down worker...")
	consumer.Stop()
	<-consumer.StopChan
	a.producer.Stop()
	return nil
}
