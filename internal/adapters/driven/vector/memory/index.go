// Package memory provides an in-memory vector index for testing and for
// single-process runs that do not need persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores vectors in a map and answers queries by brute-force
// scan. Vectors are assumed unit-normalised, so the dot product is the
// cosine similarity.
type VectorIndex struct {
	mu      sync.RWMutex
	items   map[string]driven.IndexedItem
	created bool
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		items: make(map[string]driven.IndexedItem),
	}
}

// EnsureIndex records the index as created. Name, dimension and metric are
// accepted for interface parity but not enforced.
func (v *VectorIndex) EnsureIndex(_ context.Context, _ string, _ int, _ string) (driven.EnsureOutcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.created {
		return driven.IndexAlreadyExists, nil
	}
	v.created = true
	return driven.IndexCreated, nil
}

// Upsert inserts or replaces items by ID.
func (v *VectorIndex) Upsert(_ context.Context, items []driven.IndexedItem) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, item := range items {
		v.items[item.ID] = item
	}
	return nil
}

// Query scans all stored items and returns the topK by descending
// similarity.
func (v *VectorIndex) Query(_ context.Context, vector []float32, topK int) ([]driven.QueryMatch, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	matches := make([]driven.QueryMatch, 0, len(v.items))
	for _, item := range v.items {
		matches = append(matches, driven.QueryMatch{
			ID:         item.ID,
			Similarity: dot(vector, item.Vector),
			Metadata: map[string]string{
				"filename": item.Metadata.Filename,
				"text":     item.Metadata.Text,
			},
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored items.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// dot computes the dot product over the shared prefix of two vectors.
// Mismatched lengths indicate a configuration error; the shorter length
// keeps the scan from panicking.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
