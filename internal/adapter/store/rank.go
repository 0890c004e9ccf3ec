// Package store provides the vector index drivers: a bbolt-backed
// persistent index, an in-memory index, and a Chroma REST driver. All
// implement port.VectorIndex.
package store

import (
	"math"
	"sort"

	"fundrag/internal/domain"
)

// candidate is one entry considered for ranking.
type candidate struct {
	text     string
	vector   []float32
	metadata map[string]string
	seq      uint64 // insertion order, used for stable tie-breaking
}

// matchesFilter reports whether metadata satisfies every key/value pair
// of filter. An empty filter matches everything.
func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// rank scores candidates against the query vector by cosine similarity
// and returns the topK best as a single-query nested response. Ties are
// broken by insertion order, so repeated queries are stable.
func rank(cands []candidate, query []float32, topK int, filter map[string]string) domain.QueryResponse {
	type scored struct {
		candidate
		score float64
	}

	scores := make([]scored, 0, len(cands))
	for _, c := range cands {
		if !matchesFilter(c.metadata, filter) {
			continue
		}
		scores = append(scores, scored{candidate: c, score: cosineSimilarity(query, c.vector)})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(scores) {
		topK = len(scores)
	}

	docs := make([]string, topK)
	metas := make([]map[string]string, topK)
	for i := 0; i < topK; i++ {
		docs[i] = scores[i].text
		metas[i] = scores[i].metadata
	}

	return domain.QueryResponse{
		Documents: [][]string{docs},
		Metadatas: [][]map[string]string{metas},
	}
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// 0 when either has no magnitude or dimensions mismatch.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// isZeroVector reports whether v is empty or all zeros.
func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
