package driving

import (
	"context"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
)

// RetrievalService orchestrates chunking, embedding and the vector index
// for ingestion and semantic search.
type RetrievalService interface {
	// Ingest chunks text, embeds every chunk and upserts the batch into the
	// vector index. The call is all-or-nothing: a failure part way through
	// surfaces as a whole-call failure.
	Ingest(ctx context.Context, text, filename string) (domain.IngestResult, error)

	// Search embeds the query and returns the topK nearest chunks in the
	// order the index returned them. An empty result is valid, not an error.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// BuildContext searches and formats the results into a ranked,
	// self-describing context string for answer generation. No results
	// yields an empty string and an empty slice.
	BuildContext(ctx context.Context, query string, topK int) (string, []domain.SearchResult, error)
}
