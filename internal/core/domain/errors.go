package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidChunking indicates chunking parameters violate the
	// overlap < chunk size precondition.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingFailure indicates the embedding service is unreachable or
	// rejected the input. Embedding failures are propagated, not retried.
	ErrEmbeddingFailure = errors.New("embedding service failure")

	// ErrIndexUnavailable indicates index creation, upsert or query failed
	// for a reason other than a benign "already exists" conflict.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationFailure indicates the generation service failed. The
	// pipeline never falls back to extractive mode mid-call; the failure
	// surfaces to the caller.
	ErrGenerationFailure = errors.New("generation service failure")

	// ErrLLMUnavailable indicates no generation service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
