package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"fundrag/internal/domain"
)

var bucketVectors = []byte("vectors")

// storedEntry is the on-disk representation of one index entry.
type storedEntry struct {
	Text     string            `json:"t"`
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
	Seq      uint64            `json:"s"`
}

// BoltIndex is a bbolt-backed vector index. All entries are mirrored in
// memory for brute-force cosine search; writes go through a single bbolt
// transaction per batch, so a batch either fully persists or not at all.
// Readers are never blocked by writers beyond the mirror lock.
type BoltIndex struct {
	db     *bbolt.DB
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]storedEntry
}

// NewBoltIndex opens (creating if needed) the index file at path.
func NewBoltIndex(path string, logger *zap.Logger) (*BoltIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening index db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vectors bucket: %w", err)
	}

	idx := &BoltIndex{
		db:      db,
		logger:  logger,
		entries: make(map[string]storedEntry),
	}
	if err := idx.loadEntries(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading vectors: %w", err)
	}

	logger.Debug("bolt index opened",
		zap.String("path", path),
		zap.Int("entries", len(idx.entries)),
	)

	return idx, nil
}

// loadEntries fills the in-memory mirror from disk.
func (s *BoltIndex) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e storedEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return nil // skip corrupted entries
			}
			s.entries[string(k)] = e
			return nil
		})
	})
}

// AddBatch inserts entries in one write transaction. Slice length
// mismatches reject the whole batch with domain.ErrInvalidEntry; entries
// with blank text or a zero vector are skipped, not indexed.
func (s *BoltIndex) AddBatch(ctx context.Context, ids, texts []string, vectors [][]float32, metadatas []map[string]string) error {
	if len(ids) != len(texts) || len(ids) != len(vectors) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: batch slice lengths mismatch (%d ids, %d texts, %d vectors, %d metadatas)",
			domain.ErrInvalidEntry, len(ids), len(texts), len(vectors), len(metadatas))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make(map[string]storedEntry)
	skipped := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i := range ids {
			if texts[i] == "" || isZeroVector(vectors[i]) {
				skipped++
				continue
			}

			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			e := storedEntry{
				Text:     texts[i],
				Vector:   vectors[i],
				Metadata: metadatas[i],
				Seq:      seq,
			}
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(ids[i]), data); err != nil {
				return err
			}
			added[ids[i]] = e
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}

	for id, e := range added {
		s.entries[id] = e
	}

	if skipped > 0 {
		s.logger.Debug("skipped unindexable entries", zap.Int("skipped", skipped))
	}

	return nil
}

// Upsert replaces the entry if id exists, else inserts it. The original
// insertion sequence is kept on replace so tie-breaking stays stable.
func (s *BoltIndex) Upsert(ctx context.Context, id, text string, vector []float32, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if text == "" || isZeroVector(vector) {
		return fmt.Errorf("%w: nothing useful to index for id %s", domain.ErrInvalidEntry, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entry storedEntry
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)

		seq := uint64(0)
		if existing, ok := s.entries[id]; ok {
			seq = existing.Seq
		} else {
			var err error
			seq, err = b.NextSequence()
			if err != nil {
				return err
			}
		}

		entry = storedEntry{Text: text, Vector: vector, Metadata: metadata, Seq: seq}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return fmt.Errorf("upserting %s: %w", id, err)
	}

	s.entries[id] = entry
	return nil
}

// Delete removes the entry by id. Deleting a missing id is a no-op.
func (s *BoltIndex) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}

	delete(s.entries, id)
	return nil
}

// Query ranks all candidates by cosine similarity against the in-memory
// mirror. Queries see a point-in-time snapshot and never block on writes
// beyond the mirror lock.
func (s *BoltIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) (domain.QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.QueryResponse{}, err
	}

	s.mu.RLock()
	cands := make([]candidate, 0, len(s.entries))
	for _, e := range s.entries {
		cands = append(cands, candidate{
			text:     e.Text,
			vector:   e.Vector,
			metadata: e.Metadata,
			seq:      e.Seq,
		})
	}
	s.mu.RUnlock()

	return rank(cands, vector, topK, filter), nil
}

// Count returns the number of stored entries.
func (s *BoltIndex) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Health reports whether the store can answer a trivial count.
func (s *BoltIndex) Health(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketVectors) == nil {
			return fmt.Errorf("vectors bucket missing")
		}
		return nil
	})
	return err == nil
}

// Close closes the underlying database.
func (s *BoltIndex) Close() error {
	return s.db.Close()
}
