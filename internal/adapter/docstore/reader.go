package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"textmining/worker/internal/mining"
)

// Reader fetches a stored document and turns it into plain text. Plaintext
// objects are decoded in place; formats that need extraction (pdf, docx,
// spreadsheets) are handed to the external conversion service.
type Reader struct {
	client    *storage.Client
	converter *Converter
}

func NewReader(ctx context.Context, converter *Converter, opts ...option.ClientOption) (*Reader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Reader{client: client, converter: converter}, nil
}

func (r *Reader) Fetch(ctx context.Context, bucket, key string) (string, error) {
	slog.InfoContext(ctx, "downloading document", "bucket", bucket, "key", key)

	rc, err := r.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return "", fmt.Errorf("%w: %s/%s", mining.ErrNotFound, bucket, key)
		}
		return "", fmt.Errorf("%w: download %s/%s: %v", mining.ErrExternalService, bucket, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s/%s: %v", mining.ErrExternalService, bucket, key, err)
	}

	return r.extract(ctx, key, data)
}

func (r *Reader) extract(ctx context.Context, key string, data []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	switch ext {
	case "txt", "md", "csv":
		return string(data), nil
	case "pdf", "docx", "xls", "xlsx":
		slog.InfoContext(ctx, "converting document", "key", key, "format", ext)
		return r.converter.Convert(ctx, key, data)
	default:
		return "", fmt.Errorf("%w: %s", mining.ErrUnsupportedFormat, ext)
	}
}
