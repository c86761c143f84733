package mining

import (
	"errors"
)

var (
	// ErrValidation marks a malformed inbound payload.
	ErrValidation = errors.New("invalid request payload")

	// ErrAuthenticationFailed marks credentials rejected by the identity service.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotFound marks a document key absent from the bucket.
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedFormat marks a document format without a text extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExternalService marks a failed embedding, generation, identity or
	// notification call.
	ErrExternalService = errors.New("external service call failed")

	// ErrInfrastructure marks a failed vector store operation.
	ErrInfrastructure = errors.New("vector store operation failed")
)

// Retryable reports whether the failure is transient infrastructure trouble
// rather than a permanent content or credential problem. No retry policy is
// built on top of this yet; callers use it to pick log severity.
func Retryable(err error) bool {
	return errors.Is(err, ErrExternalService) || errors.Is(err, ErrInfrastructure)
}
