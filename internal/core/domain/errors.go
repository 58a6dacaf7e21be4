package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no segmenter handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidFilter indicates a delete filter the index rejects.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrConfiguration indicates missing credentials or invalid settings.
	// It is fatal: nothing is indexed or queried after it.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion indicates a single file could not be read or segmented.
	// Batches skip the file and continue.
	ErrIngestion = errors.New("ingestion error")

	// ErrIndexWrite indicates the vector index rejected a mutation.
	ErrIndexWrite = errors.New("index write error")

	// ErrProvider indicates an embedding or completion provider failed.
	ErrProvider = errors.New("provider error")

	// ErrCircuitOpen indicates a provider is being short-circuited after repeated failures.
	ErrCircuitOpen = errors.New("circuit open")
)

// IngestionError records why one file was skipped.
type IngestionError struct {
	File string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingesting %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIngestion) true for every IngestionError.
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

// ProviderError is returned by embedding and completion providers.
type ProviderError struct {
	// Provider names the backend (e.g. "openai").
	Provider string

	// Op is the failing operation (e.g. "embed", "generate").
	Op string

	// Retryable is true for timeouts, rate limits and transient server errors.
	Retryable bool

	Err error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("%s %s failed (%s): %v", e.Provider, e.Op, kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProvider) true for every ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// IsRetryable reports whether err is a ProviderError worth retrying.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
