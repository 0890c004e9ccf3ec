package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"fundrag/config"
	"fundrag/internal/adapter/embedding"
	"fundrag/internal/adapter/llm"
	"fundrag/internal/adapter/store"
	"fundrag/internal/port"
)

// newEmbedder builds the configured embedding engine wrapped in the
// bounded LRU cache.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	var inner port.Embedder
	switch cfg.Embedding.Provider {
	case "", "hash":
		inner = embedding.NewHashEmbedder(cfg.Embedding.Dimension)
	case "openai":
		var err error
		inner, err = embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.BaseURL, cfg.Embedding.Model)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}

	return embedding.NewCachedEmbedder(inner, embedding.NewCache(cfg.Embedding.CacheSize)), nil
}

// newIndex builds the configured vector index driver.
func newIndex(cfg *config.Config) (port.VectorIndex, error) {
	switch cfg.Store.Driver {
	case "", "bolt":
		path := cfg.Store.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		return store.NewBoltIndex(path, logger)
	case "chroma":
		return store.NewChromaIndex(store.ChromaConfig{
			URL:            cfg.Store.ChromaURL,
			CollectionName: cfg.Store.Collection,
		}, logger)
	case "memory":
		return store.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// newLLM builds the chat completion client.
func newLLM(cfg *config.Config) (port.LLM, error) {
	return llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Retries:     cfg.LLM.Retries,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger)
}

// artifactDir resolves the chunk artifact directory against rootDir.
func artifactDir(cfg *config.Config) string {
	dir := cfg.Ingest.ArtifactDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootDir, dir)
	}
	return dir
}
