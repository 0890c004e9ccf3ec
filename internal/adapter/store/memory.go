package store

import (
	"context"
	"fmt"
	"sync"

	"fundrag/internal/domain"
)

// MemoryIndex is a map-backed vector index with no persistence. Used in
// tests and for throwaway corpora.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]candidate
	nextSeq uint64
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]candidate),
	}
}

func (s *MemoryIndex) AddBatch(ctx context.Context, ids, texts []string, vectors [][]float32, metadatas []map[string]string) error {
	if len(ids) != len(texts) || len(ids) != len(vectors) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: batch slice lengths mismatch", domain.ErrInvalidEntry)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range ids {
		if texts[i] == "" || isZeroVector(vectors[i]) {
			continue
		}
		s.nextSeq++
		s.entries[ids[i]] = candidate{
			text:     texts[i],
			vector:   vectors[i],
			metadata: metadatas[i],
			seq:      s.nextSeq,
		}
	}
	return nil
}

func (s *MemoryIndex) Upsert(ctx context.Context, id, text string, vector []float32, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if text == "" || isZeroVector(vector) {
		return fmt.Errorf("%w: nothing useful to index for id %s", domain.ErrInvalidEntry, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq + 1
	if existing, ok := s.entries[id]; ok {
		seq = existing.seq
	} else {
		s.nextSeq++
	}
	s.entries[id] = candidate{text: text, vector: vector, metadata: metadata, seq: seq}
	return nil
}

func (s *MemoryIndex) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) (domain.QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.QueryResponse{}, err
	}

	s.mu.RLock()
	cands := make([]candidate, 0, len(s.entries))
	for _, e := range s.entries {
		cands = append(cands, e)
	}
	s.mu.RUnlock()

	return rank(cands, vector, topK, filter), nil
}

func (s *MemoryIndex) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryIndex) Health(ctx context.Context) bool {
	return ctx.Err() == nil
}

func (s *MemoryIndex) Close() error {
	return nil
}
