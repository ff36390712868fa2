package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 450, cfg.Chunker.ChunkSize)
	assert.Equal(t, 50, cfg.Chunker.Overlap)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, "endee", cfg.Index.Provider)
	assert.Equal(t, "documind_chunks", cfg.Index.Name)
	assert.Equal(t, "cosine", cfg.Index.Metric)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.Search.TopK)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documind.toml")
	content := `
[chunker]
chunk_size = 120
overlap = 10

[index]
provider = "memory"

[llm]
provider = "none"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Chunker.ChunkSize)
	assert.Equal(t, 10, cfg.Chunker.Overlap)
	assert.Equal(t, "memory", cfg.Index.Provider)
	assert.Equal(t, "none", cfg.LLM.Provider)

	// Unset sections keep their defaults.
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, "documind_chunks", cfg.Index.Name)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\naddr=:8000"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Addr = ":9000"
	cfg.Index.Provider = "sqlite"
	cfg.Index.SQLite.Path = "custom.db"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", loaded.Server.Addr)
	assert.Equal(t, "sqlite", loaded.Index.Provider)
	assert.Equal(t, "custom.db", loaded.Index.SQLite.Path)
}

func TestAPIKeyResolution(t *testing.T) {
	t.Setenv("DOCUMIND_TEST_KEY", "sk-test")

	emb := EmbeddingConfig{APIKeyEnv: "DOCUMIND_TEST_KEY"}
	assert.Equal(t, "sk-test", emb.APIKey())

	emb.APIKeyEnv = ""
	assert.Empty(t, emb.APIKey())

	llm := LLMConfig{APIKeyEnv: "DOCUMIND_TEST_KEY"}
	assert.Equal(t, "sk-test", llm.APIKey())

	endee := EndeeConfig{AuthTokenEnv: "DOCUMIND_TEST_KEY"}
	assert.Equal(t, "sk-test", endee.AuthToken())
}
