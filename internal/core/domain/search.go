package domain

// SearchResult is the read model returned by a similarity query. It is
// constructed per query from the index response and never mutated.
type SearchResult struct {
	// ChunkID identifies the matched chunk in the vector index.
	ChunkID string

	// Filename is the source document the chunk was ingested from.
	Filename string

	// Text is the full chunk text.
	Text string

	// Similarity is the cosine similarity to the query vector. Nominally
	// in [-1, 1], expected near [0, 1] for normalised text embeddings.
	Similarity float64
}

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	// Filename is the name the document was ingested under.
	Filename string

	// NumChunks is the number of chunks persisted to the index.
	NumChunks int

	// DocID is an opaque identifier for client-side correlation only.
	// It is not stored in the index.
	DocID string
}
