package mining

import (
	"context"
	"fmt"
	"log/slog"
)

// Initializer populates the reference set once from the two baseline lookup
// documents. Initialization is check-then-init: it is idempotent across
// sequential runs but not safe against two concurrent first-time workers; run
// one worker first (or pre-seed the store) when scaling out.
type Initializer struct {
	retriever Retriever
	embedder  Embedder
	store     VectorStore

	bucket       string
	regionsKey   string
	countriesKey string
}

func NewInitializer(r Retriever, e Embedder, s VectorStore, bucket, regionsKey, countriesKey string) *Initializer {
	return &Initializer{
		retriever:    r,
		embedder:     e,
		store:        s,
		bucket:       bucket,
		regionsKey:   regionsKey,
		countriesKey: countriesKey,
	}
}

// Ensure makes the reference set available, loading it on first use. Every
// later call short-circuits on the existence check without touching the
// embedding client.
func (i *Initializer) Ensure(ctx context.Context) error {
	exists, err := i.store.ReferenceExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		slog.DebugContext(ctx, "reference data already present")
		return nil
	}

	slog.InfoContext(ctx, "initializing reference data",
		"bucket", i.bucket, "regions", i.regionsKey, "countries", i.countriesKey)

	records := make([]Record, 0, 2)
	for _, key := range []string{i.regionsKey, i.countriesKey} {
		content, err := i.retriever.Fetch(ctx, i.bucket, key)
		if err != nil {
			return fmt.Errorf("load reference document %s: %w", key, err)
		}
		vec, err := i.embedder.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("embed reference document %s: %w", key, err)
		}
		records = append(records, Record{Text: content, Vector: vec})
	}

	if err := i.store.CreateReferenceSet(ctx, records); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reference data initialized", "records", len(records))
	return nil
}
