package port

// Embedder maps text to a fixed-length vector. Deterministic: identical
// input returns bit-identical vectors. Empty or whitespace-only input
// yields the zero vector, never an error.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(text string) ([]float32, error)

	// EmbedBatch is an elementwise map of Embed over texts.
	EmbedBatch(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
