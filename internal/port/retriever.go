package port

import (
	"context"

	"fundrag/internal/domain"
)

// Retriever embeds a query and performs a top-k search against the index.
// An empty corpus yields an empty result; an unreachable index yields an
// error wrapping domain.ErrIndexUnavailable.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) (domain.RetrievalResult, error)
}
