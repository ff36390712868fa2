// Package chunker splits raw text into overlapping fixed-size word windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 450

// DefaultOverlap is the default number of overlapping words.
const DefaultOverlap = 50

// Chunker splits document text into word windows. It is a pure function of
// its configuration: no randomness, no side effects.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options. The overlap must be smaller
// than the chunk size, otherwise the window cannot advance.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidChunking, c.overlap, c.chunkSize)
	}

	return c, nil
}

// ChunkSize returns the configured window size in words.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split divides text into overlapping word windows. Runs of whitespace
// (including newlines) collapse to single spaces first, so no chunk ever
// contains a raw newline or a multi-space run. Empty or whitespace-only
// input produces zero chunks; input shorter than the chunk size produces
// exactly one chunk equal to the normalised input. The final chunk may be
// shorter than the chunk size.
func (c *Chunker) Split(text string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})
	}

	return chunks
}
