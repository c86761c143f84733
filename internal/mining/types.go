package mining

import (
	"context"
	"time"
)

// Request is one authenticated mining job. Immutable once built; discarded
// after the response is published.
type Request struct {
	Bucket        string
	Key           string
	Prompt        string
	CorrelationID string

	// Authenticated caller, filled in by the gate before processing.
	Sender            string
	SenderEnvironment string
}

// Result carries the raw generated text plus wall-clock processing time.
type Result struct {
	ExtractedInfo string
	Elapsed       time.Duration
}

// Record is one text+vector pair stored in a vector collection.
type Record struct {
	Text   string
	Vector []float32
}

type Retriever interface {
	Fetch(ctx context.Context, bucket, key string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore exposes the two logical collections: the persistent reference
// set and per-request working sets addressed by name.
type VectorStore interface {
	ReferenceExists(ctx context.Context) (bool, error)
	CreateReferenceSet(ctx context.Context, records []Record) error
	AllReferenceRecords(ctx context.Context) ([]string, error)

	CreateWorkingSet(ctx context.Context, name string, records []Record) error
	Search(ctx context.Context, name string, vector []float32, limit int) ([]string, error)
	DropWorkingSet(ctx context.Context, name string) error
}
