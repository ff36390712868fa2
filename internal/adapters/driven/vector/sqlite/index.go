// Package sqlite provides a persistent vector index backed by a local
// SQLite database. Queries are brute-force scans; it suits single-machine
// corpora where running a vector database server is overkill.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS indexes (
	name      TEXT PRIMARY KEY,
	dimension INTEGER NOT NULL,
	metric    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id       TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	text     TEXT NOT NULL,
	vector   BLOB NOT NULL
);
`

// VectorIndex stores vectors in a SQLite database file.
type VectorIndex struct {
	db   *sql.DB
	path string
}

// NewVectorIndex opens (or creates) the database at the given path.
func NewVectorIndex(path string) (*VectorIndex, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &VectorIndex{db: db, path: path}, nil
}

// Path returns the database file path.
func (v *VectorIndex) Path() string {
	return v.path
}

// EnsureIndex registers the named index in the indexes table. The insert is
// idempotent, so a concurrent create degrades to IndexAlreadyExists.
func (v *VectorIndex) EnsureIndex(ctx context.Context, name string, dimension int, metric string) (driven.EnsureOutcome, error) {
	res, err := v.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO indexes (name, dimension, metric) VALUES (?, ?, ?)`,
		name, dimension, metric)
	if err != nil {
		return 0, fmt.Errorf("%w: ensure index %q: %w", domain.ErrIndexUnavailable, name, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ensure index %q: %w", domain.ErrIndexUnavailable, name, err)
	}
	if rows == 0 {
		return driven.IndexAlreadyExists, nil
	}
	return driven.IndexCreated, nil
}

// Upsert inserts or replaces items by ID in a single transaction.
func (v *VectorIndex) Upsert(ctx context.Context, items []driven.IndexedItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO items (id, filename, text, vector) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %w", domain.ErrIndexUnavailable, err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Metadata.Filename, item.Metadata.Text,
			float32SliceToBytes(item.Vector)); err != nil {
			return fmt.Errorf("%w: upsert item %q: %w", domain.ErrIndexUnavailable, item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query scans every stored vector and returns the topK by descending cosine
// similarity. Vectors are unit-normalised at embedding time, so the dot
// product suffices.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]driven.QueryMatch, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT id, filename, text, vector FROM items`)
	if err != nil {
		return nil, fmt.Errorf("%w: query items: %w", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var matches []driven.QueryMatch
	for rows.Next() {
		var (
			id, filename, text string
			blob               []byte
		)
		if err := rows.Scan(&id, &filename, &text, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan item: %w", domain.ErrIndexUnavailable, err)
		}

		matches = append(matches, driven.QueryMatch{
			ID:         id,
			Similarity: dot(vector, bytesToFloat32Slice(blob)),
			Metadata: map[string]string{
				"filename": filename,
				"text":     text,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate items: %w", domain.ErrIndexUnavailable, err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close closes the database connection.
func (v *VectorIndex) Close() error {
	return v.db.Close()
}

// float32SliceToBytes converts a vector to a little-endian byte blob.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte blob back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// dot computes the dot product over the shared prefix of two vectors.
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
