package endee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
)

func newTestIndex(t *testing.T, handler http.Handler) *VectorIndex {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewVectorIndex(Config{BaseURL: srv.URL, AuthToken: "test-token"})
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/index/documind_chunks", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	outcome, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.NoError(t, err)
	assert.Equal(t, driven.IndexAlreadyExists, outcome)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	var created createIndexRequest
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/index":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	outcome, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.NoError(t, err)
	assert.Equal(t, driven.IndexCreated, outcome)
	assert.Equal(t, "documind_chunks", created.Name)
	assert.Equal(t, 384, created.Dimension)
	assert.Equal(t, "cosine", created.SpaceType)
	assert.Equal(t, "float32", created.Precision)
}

func TestEnsureIndex_ConflictResolvesToExists(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// Another writer won the create race.
		w.WriteHeader(http.StatusConflict)
	}))

	outcome, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.NoError(t, err)
	assert.Equal(t, driven.IndexAlreadyExists, outcome)
}

func TestEnsureIndex_ServerDown(t *testing.T) {
	idx := NewVectorIndex(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestTransportErrorsKeepTheirChain(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Query(ctx, []float32{1}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.ErrorIs(t, err, context.Canceled, "the transport error stays inspectable under the domain wrap")

	err = idx.Upsert(ctx, []driven.IndexedItem{{ID: "a_0", Vector: []float32{1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = idx.EnsureIndex(ctx, "documind_chunks", 384, "cosine")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpsert(t *testing.T) {
	var got upsertRequest
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/api/v1/index/documind_chunks/vectors":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	_, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.NoError(t, err)

	err = idx.Upsert(context.Background(), []driven.IndexedItem{
		{
			ID:       "notes.txt_0",
			Vector:   []float32{0.1, 0.2},
			Metadata: driven.ItemMetadata{Filename: "notes.txt", Text: "hello world"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.Vectors, 1)
	assert.Equal(t, "notes.txt_0", got.Vectors[0].ID)
	assert.Equal(t, "notes.txt", got.Vectors[0].Meta["filename"])
	assert.Equal(t, "hello world", got.Vectors[0].Meta["text"])
}

func TestUpsert_EmptyBatchIsNoop(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty batch")
	}))

	require.NoError(t, idx.Upsert(context.Background(), nil))
}

func TestUpsert_ServerError(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"disk full"}`))
	}))

	err := idx.Upsert(context.Background(), []driven.IndexedItem{{ID: "a_0"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Contains(t, err.Error(), "disk full")
}

func TestQuery(t *testing.T) {
	var got searchRequest
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/api/v1/index/documind_chunks/search":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{
						"id":         "notes.txt_0",
						"similarity": 0.91,
						"meta":       map[string]string{"filename": "notes.txt", "text": "hello"},
					},
					{
						// Absent meta and similarity decode to zero values.
						"id": "bare.txt_2",
					},
				},
			})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	_, err := idx.EnsureIndex(context.Background(), "documind_chunks", 384, "cosine")
	require.NoError(t, err)

	matches, err := idx.Query(context.Background(), []float32{0.5, 0.5}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TopK)

	require.Len(t, matches, 2)
	assert.Equal(t, "notes.txt_0", matches[0].ID)
	assert.InDelta(t, 0.91, matches[0].Similarity, 1e-9)
	assert.Equal(t, "notes.txt", matches[0].Metadata["filename"])

	assert.Equal(t, "bare.txt_2", matches[1].ID)
	assert.Zero(t, matches[1].Similarity)
	assert.NotNil(t, matches[1].Metadata, "metadata map is never nil")
	assert.Empty(t, matches[1].Metadata["filename"])
}

func TestQuery_ServerError(t *testing.T) {
	idx := newTestIndex(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := idx.Query(context.Background(), []float32{0.5}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
