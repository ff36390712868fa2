package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/chunker"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// DefaultTopK is the number of neighbours requested when the caller passes
// a non-positive top-k.
const DefaultTopK = 5

// contextSeparator joins formatted source blocks in the assembled context.
const contextSeparator = "\n\n---\n\n"

// RetrievalEngine bridges the chunker and the two external gateways. It owns
// only transient chunks and search results for the duration of a call.
type RetrievalEngine struct {
	chunker  *chunker.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex

	defaultTopK int
}

// RetrievalOption configures the retrieval engine.
type RetrievalOption func(*RetrievalEngine)

// WithDefaultTopK sets the result count used when a caller passes a
// non-positive top-k.
func WithDefaultTopK(k int) RetrievalOption {
	return func(e *RetrievalEngine) {
		if k > 0 {
			e.defaultTopK = k
		}
	}
}

// NewRetrievalEngine creates a retrieval engine over the given gateways.
func NewRetrievalEngine(ch *chunker.Chunker, embedder driven.EmbeddingService, index driven.VectorIndex, opts ...RetrievalOption) *RetrievalEngine {
	e := &RetrievalEngine{
		chunker:     ch,
		embedder:    embedder,
		index:       index,
		defaultTopK: DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest chunks the text, embeds each chunk in order and upserts the whole
// document as one batch. A failure part way through fails the call as a
// whole; the caller cannot assume partial chunks were persisted.
func (e *RetrievalEngine) Ingest(ctx context.Context, text, filename string) (domain.IngestResult, error) {
	logger.Section("Ingest")
	chunks := e.chunker.Split(text)
	logger.Debug("Document %q produced %d chunks (window=%d overlap=%d)",
		filename, len(chunks), e.chunker.ChunkSize(), e.chunker.Overlap())

	items := make([]driven.IndexedItem, 0, len(chunks))
	for _, ch := range chunks {
		vector, err := e.embedder.Embed(ctx, ch.Text)
		if err != nil {
			return domain.IngestResult{}, fmt.Errorf("%w: embed chunk %d of %q: %w",
				domain.ErrEmbeddingFailure, ch.Index, filename, err)
		}

		items = append(items, driven.IndexedItem{
			ID:     fmt.Sprintf("%s_%d", filename, ch.Index),
			Vector: vector,
			Metadata: driven.ItemMetadata{
				Filename: filename,
				Text:     ch.Text,
			},
		})
	}

	if len(items) > 0 {
		if err := e.index.Upsert(ctx, items); err != nil {
			return domain.IngestResult{}, fmt.Errorf("upsert %d items for %q: %w", len(items), filename, err)
		}
	}

	logger.Info("Ingested %q: %d chunks", filename, len(items))

	return domain.IngestResult{
		Filename:  filename,
		NumChunks: len(items),
		DocID:     newDocID(),
	}, nil
}

// Search embeds the query with the same configuration used at ingestion and
// maps the index's raw matches into search results. Result order is exactly
// the index's order; descending similarity is the index's contract.
func (e *RetrievalEngine) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = e.defaultTopK
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingFailure, err)
	}

	matches, err := e.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Query returned %d matches", len(matches))

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, decodeMatch(m))
	}
	return results, nil
}

// BuildContext formats the search results into labelled, rank-ordered source
// blocks. The string is the only context passed to answer generation, so each
// block names its filename for downstream citation.
func (e *RetrievalEngine) BuildContext(ctx context.Context, query string, topK int) (string, []domain.SearchResult, error) {
	results, err := e.Search(ctx, query, topK)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "", nil, nil
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source %d — %s (similarity: %.3f)]\n%s",
			i+1, r.Filename, r.Similarity, r.Text)
	}

	return strings.Join(blocks, contextSeparator), results, nil
}

// decodeMatch isolates the loosely structured index response from the
// internal read model. Absent metadata fields default to empty strings and
// a missing similarity stays 0; external field absence never propagates as
// an error.
func decodeMatch(m driven.QueryMatch) domain.SearchResult {
	return domain.SearchResult{
		ChunkID:    m.ID,
		Filename:   m.Metadata["filename"],
		Text:       m.Metadata["text"],
		Similarity: m.Similarity,
	}
}

// newDocID generates the opaque correlation identifier returned by Ingest.
func newDocID() string {
	return uuid.New().String()[:8]
}
