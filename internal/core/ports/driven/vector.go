package driven

import "context"

// ItemMetadata is the metadata persisted alongside each vector.
type ItemMetadata struct {
	// Filename is the source document the chunk came from.
	Filename string

	// Text is the chunk's full text.
	Text string
}

// IndexedItem is the persisted unit in the vector index. The identifier is
// a deterministic function of filename and chunk index, so re-ingesting the
// same filename overwrites prior chunks via upsert semantics.
type IndexedItem struct {
	// ID uniquely identifies the item ("{filename}_{chunkIndex}").
	ID string

	// Vector is the unit-normalised embedding.
	Vector []float32

	// Metadata travels with the vector and is returned by queries.
	Metadata ItemMetadata
}

// QueryMatch is the raw, loosely structured record a query returns. The
// index response is untrusted: metadata keys may be absent and similarity
// may be missing (zero). Callers decode it defensively into a SearchResult.
type QueryMatch struct {
	// ID is the matched item's identifier.
	ID string

	// Similarity is the similarity score, 0 when the index omitted it.
	Similarity float64

	// Metadata holds whatever fields the index returned.
	Metadata map[string]string
}

// EnsureOutcome reports how EnsureIndex satisfied the request. Only a real
// failure (a non-nil error) is fatal; a concurrent-create conflict resolves
// to IndexAlreadyExists.
type EnsureOutcome int

const (
	// IndexCreated means the index did not exist and was created.
	IndexCreated EnsureOutcome = iota

	// IndexAlreadyExists means a matching index was already present.
	IndexAlreadyExists
)

// VectorIndex stores (id, vector, metadata) tuples and answers top-k
// nearest-neighbour queries.
type VectorIndex interface {
	// EnsureIndex idempotently creates or gets the named index. It must
	// tolerate a concurrent create by falling back to get.
	EnsureIndex(ctx context.Context, name string, dimension int, metric string) (EnsureOutcome, error)

	// Upsert inserts or replaces items by ID as a single batch.
	Upsert(ctx context.Context, items []IndexedItem) error

	// Query returns the topK nearest neighbours ordered by descending
	// similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error)

	// Close releases resources.
	Close() error
}
