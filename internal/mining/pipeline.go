package mining

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"textmining/worker/internal/text"
)

// NameFunc derives the per-request working set name from the correlation id.
type NameFunc func(correlationID string) string

// Pipeline runs one mining request end to end: reference data, document load,
// chunking, embedding, working set build, retrieval, generation. The working
// set is scoped to the call: it is dropped on every exit path, exactly once.
type Pipeline struct {
	retriever Retriever
	embedder  Embedder
	generator Generator
	store     VectorStore
	refs      *Initializer
	nameFor   NameFunc

	chunkSize    int
	chunkOverlap int
	topK         int
}

func NewPipeline(
	retriever Retriever,
	embedder Embedder,
	generator Generator,
	store VectorStore,
	refs *Initializer,
	nameFor NameFunc,
	chunkSize, chunkOverlap, topK int,
) *Pipeline {
	return &Pipeline{
		retriever:    retriever,
		embedder:     embedder,
		generator:    generator,
		store:        store,
		refs:         refs,
		nameFor:      nameFor,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topK:         topK,
	}
}

func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	name := p.nameFor(req.CorrelationID)

	// Teardown runs whichever step fails. Dropping a set that was never
	// created is a no-op, and a drop failure never shadows the pipeline error.
	defer func() {
		if err := p.store.DropWorkingSet(context.WithoutCancel(ctx), name); err != nil {
			slog.ErrorContext(ctx, "working set cleanup failed", "working_set", name, "error", err)
		}
	}()

	if err := p.refs.Ensure(ctx); err != nil {
		return nil, err
	}

	content, err := p.retriever.Fetch(ctx, req.Bucket, req.Key)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", req.Key, err)
	}

	fragments := text.Split(content, p.chunkSize, p.chunkOverlap)
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: document %s has no text", ErrValidation, req.Key)
	}
	slog.InfoContext(ctx, "document chunked", "key", req.Key, "fragments", len(fragments))

	// Embed everything before any working set exists, so an embedding failure
	// leaves no partial state behind.
	records := make([]Record, 0, len(fragments))
	for _, frag := range fragments {
		vec, err := p.embedder.Embed(ctx, frag.Text)
		if err != nil {
			return nil, fmt.Errorf("embed fragment %d: %w", frag.Index, err)
		}
		records = append(records, Record{Text: frag.Text, Vector: vec})
	}

	if err := p.store.CreateWorkingSet(ctx, name, records); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "working set created", "working_set", name, "records", len(records))

	promptVec, err := p.embedder.Embed(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}

	relevant, err := p.store.Search(ctx, name, promptVec, p.topK)
	if err != nil {
		return nil, err
	}

	reference, err := p.store.AllReferenceRecords(ctx)
	if err != nil {
		return nil, err
	}

	query := BuildQuery(append(reference, relevant...), req.Prompt)

	extracted, err := p.generator.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	slog.InfoContext(ctx, "mining complete",
		"key", req.Key, "sender", req.Sender, "environment", req.SenderEnvironment, "elapsed", elapsed)

	return &Result{ExtractedInfo: extracted, Elapsed: elapsed}, nil
}
