package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings through any OpenAI-compatible API.
// Drop-in replacement for HashEmbedder behind port.Embedder when a real
// pretrained multilingual model is available.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	dim     int
	timeout time.Duration
}

// NewOpenAIEmbedder reads the API key from the named environment variable.
// An empty baseURL means the OpenAI default.
func NewOpenAIEmbedder(apiKeyEnv, baseURL, model string) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	dim := 1536
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		dim:     dim,
		timeout: 60 * time.Second,
	}, nil
}

// Embed generates one embedding. Blank input short-circuits to the zero
// vector without an API call.
func (e *OpenAIEmbedder) Embed(text string) ([]float32, error) {
	vecs, err := e.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for texts in a single request. Blank
// inputs map to zero vectors; non-blank ones are L2-normalized so cosine
// ranking stays consistent with the hash embedder.
func (e *OpenAIEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	var input []string
	var inputIdx []int
	for i, t := range texts {
		if isBlank(t) {
			vecs[i] = make([]float32, e.dim)
			continue
		}
		input = append(input, t)
		inputIdx = append(inputIdx, i)
	}
	if len(input) == 0 {
		return vecs, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("embedding response size mismatch: want %d, got %d", len(input), len(resp.Data))
	}

	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(inputIdx) {
			continue
		}
		v := make([]float32, len(data.Embedding))
		for j := range data.Embedding {
			v[j] = float32(data.Embedding[j])
		}
		l2Normalize(v)
		vecs[inputIdx[data.Index]] = v
	}

	return vecs, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
