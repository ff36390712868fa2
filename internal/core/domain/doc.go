// Package domain defines the core business entities for DocuMind.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded word-count slice of a document
//   - SearchResult: A retrieved chunk with its similarity score
//   - QAResult: The answer to a question, with cited sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
