package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fundrag/internal/domain"
	"fundrag/internal/port"
)

// Retriever embeds a query and searches the vector index. Implements
// port.Retriever.
type Retriever struct {
	embedder port.Embedder
	index    port.VectorIndex
	logger   *zap.Logger
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder port.Embedder, index port.VectorIndex, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Search returns the topK most similar passages. An empty corpus yields
// an empty result; only an unreachable or failing index is an error,
// wrapping domain.ErrIndexUnavailable.
func (r *Retriever) Search(ctx context.Context, query string, topK int) (domain.RetrievalResult, error) {
	return r.SearchFiltered(ctx, query, topK, nil)
}

// SearchFiltered is Search restricted to entries whose metadata matches
// all pairs of filter.
func (r *Retriever) SearchFiltered(ctx context.Context, query string, topK int, filter map[string]string) (domain.RetrievalResult, error) {
	vec, err := r.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	resp, err := r.index.Query(ctx, vec, topK, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	return flatten(resp), nil
}

// flatten converts the nested single-query response to a flat result.
func flatten(resp domain.QueryResponse) domain.RetrievalResult {
	if len(resp.Documents) == 0 {
		return nil
	}

	docs := resp.Documents[0]
	var metas []map[string]string
	if len(resp.Metadatas) > 0 {
		metas = resp.Metadatas[0]
	}

	result := make(domain.RetrievalResult, 0, len(docs))
	for i, text := range docs {
		var meta map[string]string
		if i < len(metas) {
			meta = metas[i]
		}
		result = append(result, domain.RetrievedDoc{Text: text, Metadata: meta})
	}
	return result
}
