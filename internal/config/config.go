// Package config loads the semfilter configuration from a JSON file with
// environment variable expansion for secrets. A missing config file is not an
// error; defaults apply.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is the top-level configuration.
type Config struct {
	Database DatabaseConfig `json:"database"`
	Embedder EmbedderConfig `json:"embedder"`
	Cache    CacheConfig    `json:"cache,omitempty"`
	Filter   FilterConfig   `json:"filter,omitempty"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Provider   string       `json:"provider"`             // "ollama" (default) or "openai"
	Model      string       `json:"model,omitempty"`      // provider default if empty
	Dimensions int          `json:"dimensions,omitempty"` // provider default if 0
	OpenAI     OpenAIConfig `json:"openai,omitempty"`
	Ollama     OllamaConfig `json:"ollama,omitempty"`
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey string `json:"api_key,omitempty"` // Supports ${ENV_VAR} expansion
}

// OllamaConfig holds Ollama provider settings.
type OllamaConfig struct {
	BaseURL string `json:"base_url,omitempty"`
	Token   string `json:"token,omitempty"` // Supports ${ENV_VAR} expansion
}

// CacheConfig sizes the two in-process caches.
type CacheConfig struct {
	EmbeddingMaxItems  int `json:"embedding_max_items,omitempty"`  // default 2048
	CategoryTTLSeconds int `json:"category_ttl_seconds,omitempty"` // default 120
}

// FilterConfig contains filtering defaults.
type FilterConfig struct {
	DefaultThreshold float64 `json:"default_threshold,omitempty"` // default 0.6
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "semfilter.db"},
		Embedder: EmbedderConfig{Provider: "ollama"},
		Cache:    CacheConfig{EmbeddingMaxItems: 2048, CategoryTTLSeconds: 120},
		Filter:   FilterConfig{DefaultThreshold: 0.6},
	}
}

// Load reads the config file at path, expands ${ENV_VAR} references in
// secrets, and applies defaults. A .env file in the working directory is
// loaded first so secrets can live outside the config file.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.Embedder.OpenAI.APIKey = os.ExpandEnv(cfg.Embedder.OpenAI.APIKey)
	cfg.Embedder.Ollama.Token = os.ExpandEnv(cfg.Embedder.Ollama.Token)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = d.Embedder.Provider
	}
	if c.Cache.EmbeddingMaxItems <= 0 {
		c.Cache.EmbeddingMaxItems = d.Cache.EmbeddingMaxItems
	}
	if c.Cache.CategoryTTLSeconds <= 0 {
		c.Cache.CategoryTTLSeconds = d.Cache.CategoryTTLSeconds
	}
	if c.Filter.DefaultThreshold == 0 {
		c.Filter.DefaultThreshold = d.Filter.DefaultThreshold
	}
}

// Validate checks settings that would otherwise fail deep inside the engine.
func (c *Config) Validate() error {
	switch c.Embedder.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: unknown embedder provider %q", c.Embedder.Provider)
	}
	if c.Filter.DefaultThreshold < -1 || c.Filter.DefaultThreshold > 1 {
		return fmt.Errorf("config: default_threshold must be in [-1, 1], got %v", c.Filter.DefaultThreshold)
	}
	if c.Embedder.Dimensions < 0 {
		return fmt.Errorf("config: dimensions must not be negative, got %d", c.Embedder.Dimensions)
	}
	return nil
}
