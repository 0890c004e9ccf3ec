package port

import (
	"context"

	"fundrag/internal/domain"
)

// VectorIndex persists (id, text, vector, metadata) tuples and answers
// nearest-neighbor queries by cosine similarity. Mutations persist before
// returning; a batch either fully succeeds or is rejected.
type VectorIndex interface {
	// AddBatch inserts entries in a single atomic batch. Fails with
	// domain.ErrInvalidEntry on slice length mismatch; entries with an
	// empty or all-zero vector are skipped.
	AddBatch(ctx context.Context, ids, texts []string, vectors [][]float32, metadatas []map[string]string) error

	// Upsert replaces the entry if id exists, else inserts it.
	Upsert(ctx context.Context, id, text string, vector []float32, metadata map[string]string) error

	// Delete removes the entry by id.
	Delete(ctx context.Context, id string) error

	// Query returns up to topK entries ranked by descending cosine
	// similarity, ties broken by insertion order. A non-empty filter
	// restricts candidates to entries whose metadata matches all given
	// key/value pairs before ranking.
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string) (domain.QueryResponse, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Health reports whether the store can answer a trivial query.
	Health(ctx context.Context) bool

	// Close releases resources held by the index.
	Close() error
}
