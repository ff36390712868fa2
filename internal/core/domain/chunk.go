package domain

// Chunk is a bounded word-count slice of a document, overlapping with its
// neighbours. Chunks exist only for the duration of an ingest call: the
// vector index persists their embeddings and metadata, never the Chunk
// itself.
type Chunk struct {
	// Index is the 0-based position of the chunk within its source document.
	Index int

	// Text is the whitespace-normalised chunk content. It never contains a
	// raw newline or a multi-space run.
	Text string
}
