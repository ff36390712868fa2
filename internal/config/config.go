// Package config loads the DocuMind configuration from a TOML file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ChunkerConfig configures how documents are split into word windows.
type ChunkerConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding gateway.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	Model     string `toml:"model"`

	// Dimensions must match the vector index; ingest and search share it.
	Dimensions  int `toml:"dimensions"`
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond throttles embedding calls when positive.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// APIKey resolves the API key from the configured environment variable.
func (c EmbeddingConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// EndeeConfig contains connection details for an Endee vector database.
type EndeeConfig struct {
	BaseURL      string `toml:"base_url"`
	AuthTokenEnv string `toml:"auth_token_env"`
	TimeoutSecs  int    `toml:"timeout_secs"`
}

// AuthToken resolves the auth token from the configured environment variable.
func (c EndeeConfig) AuthToken() string {
	if c.AuthTokenEnv == "" {
		return ""
	}
	return os.Getenv(c.AuthTokenEnv)
}

// SQLiteConfig contains the database path for the SQLite vector index.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// IndexConfig selects and configures the vector index gateway.
type IndexConfig struct {
	// Provider is "endee", "sqlite" or "memory".
	Provider string `toml:"provider"`

	Name   string `toml:"name"`
	Metric string `toml:"metric"`

	Endee  EndeeConfig  `toml:"endee"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

// LLMConfig selects and configures the generation gateway. Provider "none"
// (or a missing API key for providers that need one) selects extractive mode
// for the process lifetime.
type LLMConfig struct {
	// Provider is "openai", "anthropic", "ollama" or "none".
	Provider string `toml:"provider"`

	BaseURL     string  `toml:"base_url"`
	APIKeyEnv   string  `toml:"api_key_env"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

// APIKey resolves the API key from the configured environment variable.
func (c LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	TopK int `toml:"top_k"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Chunker   ChunkerConfig   `toml:"chunker"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
	LLM       LLMConfig       `toml:"llm"`
	Search    SearchConfig    `toml:"search"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./documind.toml first, then ~/.documind/config.toml.
// If neither exists, defaults are written to the user path and returned.
func LoadDefault() (*Config, string, error) {
	cwdPath := "documind.toml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".documind", "config.toml"), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}

	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 450
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 50
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" && cfg.Embedding.Provider == "openai" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}

	if cfg.Index.Provider == "" {
		cfg.Index.Provider = "endee"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "documind_chunks"
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = "cosine"
	}
	if cfg.Index.Endee.BaseURL == "" {
		cfg.Index.Endee.BaseURL = "http://127.0.0.1:8080"
	}
	if cfg.Index.Endee.AuthTokenEnv == "" {
		cfg.Index.Endee.AuthTokenEnv = "ENDEE_AUTH_TOKEN"
	}
	if cfg.Index.Endee.TimeoutSecs == 0 {
		cfg.Index.Endee.TimeoutSecs = 15
	}
	if cfg.Index.SQLite.Path == "" {
		cfg.Index.SQLite.Path = "documind.db"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.APIKeyEnv == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
		default:
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.LLM.Model == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}

	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 5
	}
}
