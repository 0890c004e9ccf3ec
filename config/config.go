package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the fundrag tool.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	LLM       LLMConfig       `yaml:"llm"`
	Ask       AskConfig       `yaml:"ask"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig controls document discovery and cleaning.
type IngestConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	Aggressive  bool     `yaml:"aggressive"` // heavy cleaning for bad scans
	Workers     int      `yaml:"workers"`
	ArtifactDir string   `yaml:"artifact_dir"`
}

// ChunkConfig controls the hybrid chunker.
type ChunkConfig struct {
	Size    int `yaml:"size"`    // words per chunk
	Overlap int `yaml:"overlap"` // words shared between consecutive windows
}

// EmbeddingConfig selects and sizes the embedding engine.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "hash" or "openai"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	CacheSize int    `yaml:"cache_size"`
}

// StoreConfig selects the vector index driver.
type StoreConfig struct {
	Driver     string `yaml:"driver"` // "bolt", "chroma" or "memory"
	Path       string `yaml:"path"`
	ChromaURL  string `yaml:"chroma_url"`
	Collection string `yaml:"collection"`
}

// LLMConfig configures the chat completion collaborator.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	Retries        int     `yaml:"retries"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AskConfig controls retrieval and context preparation for ask().
type AskConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContext      int `yaml:"max_context"`       // passages kept after dedup
	MinChunkChars   int `yaml:"min_chunk_chars"`   // drop shorter passages
	CacheSize       int `yaml:"cache_size"`        // query result cache entries
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"` // query result cache TTL
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes:    []string{"**/*.txt", "**/*.md", "**/*.text"},
			Excludes:    []string{"**/node_modules/**", "**/.git/**", "**/data/**"},
			Aggressive:  false,
			Workers:     4,
			ArtifactDir: filepath.Join("data", "chunks"),
		},
		Chunk: ChunkConfig{
			Size:    700,
			Overlap: 100,
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			CacheSize: 5000,
		},
		Store: StoreConfig{
			Driver:     "bolt",
			Path:       filepath.Join("data", "vector_db", "fundrag.db"),
			ChromaURL:  "http://localhost:8000",
			Collection: "startup_funding_knowledge",
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "llama-3.1-8b-instant",
			APIKeyEnv:      "GROQ_API_KEY",
			MaxTokens:      1200,
			Temperature:    0.7,
			Retries:        3,
			TimeoutSeconds: 30,
		},
		Ask: AskConfig{
			TopK:            5,
			MaxContext:      5,
			MinChunkChars:   20,
			CacheSize:       100,
			CacheTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for fundrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "fundrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".fundrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
