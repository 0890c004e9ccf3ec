// Package embedding provides the deterministic fallback embedder, a
// bounded cache decorator, and an OpenAI-compatible remote embedder. All
// implement port.Embedder, so they swap freely behind the same contract.
package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

const (
	// DefaultDimension matches the corpus index built by earlier runs.
	DefaultDimension = 384

	// maxHashTokens caps how many leading tokens contribute to the vector.
	maxHashTokens = 50
)

// HashEmbedder is the fallback semantic hash: script-agnostic, works
// without any pretrained model, and therefore multilingual by
// construction. Deterministic and pure.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder of the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Embed maps text to a unit-length vector. Tokens are the first 50
// lowercase whitespace-separated words; token i adds 1/(i+1) to the slot
// selected by its hash, so earlier tokens weigh more. Empty input yields
// the zero vector unnormalized, since normalizing zero is undefined.
func (e *HashEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dim)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return vec, nil
	}
	if len(words) > maxHashTokens {
		words = words[:maxHashTokens]
	}

	for i, w := range words {
		slot := stableHash(w) % uint32(e.dim)
		vec[slot] += float32(1.0 / float64(i+1))
	}

	l2Normalize(vec)
	return vec, nil
}

// EmbedBatch is an elementwise map of Embed.
func (e *HashEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// Dimension returns the embedding vector dimension.
func (e *HashEmbedder) Dimension() int {
	return e.dim
}

// ModelName returns the name of the embedding model.
func (e *HashEmbedder) ModelName() string {
	return "hash-v1"
}

// stableHash is FNV-1a, fixed across processes so embeddings stay
// comparable between ingestion runs.
func stableHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// l2Normalize scales v to unit length in place. No-op for the zero vector.
func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// IsZeroVector reports whether v is empty or all zeros, i.e. carries
// nothing useful to index.
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
