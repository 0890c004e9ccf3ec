package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"fundrag/internal/domain"
)

func newTestBolt(t *testing.T) *BoltIndex {
	t.Helper()
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seedIndex(t *testing.T, idx *BoltIndex) {
	t.Helper()
	err := idx.AddBatch(context.Background(),
		[]string{"a", "b", "c"},
		[]string{"exact match text", "close match text", "unrelated text"},
		[][]float32{
			{1, 0, 0},
			{0.9, 0.1, 0},
			{0, 0, 1},
		},
		[]map[string]string{
			{"source_file": "doc1.txt", "language": "en"},
			{"source_file": "doc1.txt", "language": "en"},
			{"source_file": "doc2.txt", "language": "ta"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
}

func TestBoltIndex_QueryOrdersByCosine(t *testing.T) {
	idx := newTestBolt(t)
	seedIndex(t, idx)

	resp, err := idx.Query(context.Background(), []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	docs := resp.Documents[0]
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0] != "exact match text" {
		t.Errorf("expected exact match first, got %q", docs[0])
	}
	if docs[1] != "close match text" {
		t.Errorf("expected close match second, got %q", docs[1])
	}
	if docs[2] != "unrelated text" {
		t.Errorf("expected unrelated text last, got %q", docs[2])
	}
}

func TestBoltIndex_QueryTopKCap(t *testing.T) {
	idx := newTestBolt(t)
	seedIndex(t, idx)

	resp, err := idx.Query(context.Background(), []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents[0]) != 2 {
		t.Errorf("expected 2 documents, got %d", len(resp.Documents[0]))
	}

	// topK beyond the corpus returns everything without error.
	resp, err = idx.Query(context.Background(), []float32{1, 0, 0}, 50, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents[0]) != 3 {
		t.Errorf("expected all 3 documents, got %d", len(resp.Documents[0]))
	}
}

func TestBoltIndex_TieBreakByInsertionOrder(t *testing.T) {
	idx := newTestBolt(t)

	// Identical vectors score identically; insertion order decides.
	err := idx.AddBatch(context.Background(),
		[]string{"first", "second", "third"},
		[]string{"inserted first", "inserted second", "inserted third"},
		[][]float32{{1, 0}, {1, 0}, {1, 0}},
		[]map[string]string{{}, {}, {}},
	)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		resp, err := idx.Query(context.Background(), []float32{1, 0}, 3, nil)
		if err != nil {
			t.Fatal(err)
		}
		docs := resp.Documents[0]
		if docs[0] != "inserted first" || docs[1] != "inserted second" || docs[2] != "inserted third" {
			t.Fatalf("run %d: expected insertion order, got %v", i, docs)
		}
	}
}

func TestBoltIndex_MetadataFilter(t *testing.T) {
	idx := newTestBolt(t)
	seedIndex(t, idx)

	resp, err := idx.Query(context.Background(), []float32{1, 0, 0}, 10, map[string]string{"language": "ta"})
	if err != nil {
		t.Fatal(err)
	}

	docs := resp.Documents[0]
	if len(docs) != 1 {
		t.Fatalf("expected 1 filtered document, got %d", len(docs))
	}
	if docs[0] != "unrelated text" {
		t.Errorf("expected Tamil document, got %q", docs[0])
	}
	if resp.Metadatas[0][0]["language"] != "ta" {
		t.Errorf("expected language metadata ta, got %q", resp.Metadatas[0][0]["language"])
	}
}

func TestBoltIndex_AddBatchLengthMismatch(t *testing.T) {
	idx := newTestBolt(t)

	err := idx.AddBatch(context.Background(),
		[]string{"a", "b"},
		[]string{"only one text"},
		[][]float32{{1}, {2}},
		[]map[string]string{{}, {}},
	)
	if !errors.Is(err, domain.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}

	count, _ := idx.Count(context.Background())
	if count != 0 {
		t.Errorf("expected nothing indexed after rejected batch, got %d", count)
	}
}

func TestBoltIndex_SkipsBlankAndZeroEntries(t *testing.T) {
	idx := newTestBolt(t)

	err := idx.AddBatch(context.Background(),
		[]string{"good", "blank", "zero"},
		[]string{"real content", "", "zero vector content"},
		[][]float32{{1, 0}, {1, 0}, {0, 0}},
		[]map[string]string{{}, {}, {}},
	)
	if err != nil {
		t.Fatal(err)
	}

	count, _ := idx.Count(context.Background())
	if count != 1 {
		t.Errorf("expected 1 indexed entry, got %d", count)
	}
}

func TestBoltIndex_UpsertReplaces(t *testing.T) {
	idx := newTestBolt(t)

	ctx := context.Background()
	if err := idx.Upsert(ctx, "doc", "original", []float32{1, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "doc", "replaced", []float32{0, 1}, nil); err != nil {
		t.Fatal(err)
	}

	count, _ := idx.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", count)
	}

	resp, err := idx.Query(ctx, []float32{0, 1}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Documents[0][0] != "replaced" {
		t.Errorf("expected replaced text, got %q", resp.Documents[0][0])
	}
}

func TestBoltIndex_UpsertRejectsEmpty(t *testing.T) {
	idx := newTestBolt(t)

	if err := idx.Upsert(context.Background(), "x", "", []float32{1}, nil); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for blank text, got %v", err)
	}
	if err := idx.Upsert(context.Background(), "x", "text", []float32{0, 0}, nil); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for zero vector, got %v", err)
	}
}

func TestBoltIndex_Delete(t *testing.T) {
	idx := newTestBolt(t)
	seedIndex(t, idx)

	ctx := context.Background()
	if err := idx.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	count, _ := idx.Count(ctx)
	if count != 2 {
		t.Errorf("expected 2 entries after delete, got %d", count)
	}

	// Missing id is a no-op.
	if err := idx.Delete(ctx, "missing"); err != nil {
		t.Errorf("expected deleting missing id to succeed, got %v", err)
	}
}

func TestBoltIndex_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	idx, err := NewBoltIndex(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	err = idx.AddBatch(ctx,
		[]string{"a"},
		[]string{"persisted text"},
		[][]float32{{1, 0}},
		[]map[string]string{{"source_file": "doc.txt"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	idx.Close()

	reopened, err := NewBoltIndex(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	count, _ := reopened.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", count)
	}

	resp, err := reopened.Query(ctx, []float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Documents[0][0] != "persisted text" {
		t.Errorf("expected persisted text, got %q", resp.Documents[0][0])
	}
	if resp.Metadatas[0][0]["source_file"] != "doc.txt" {
		t.Errorf("expected metadata preserved, got %v", resp.Metadatas[0][0])
	}
}

func TestBoltIndex_Health(t *testing.T) {
	idx := newTestBolt(t)

	if !idx.Health(context.Background()) {
		t.Error("expected healthy index")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if idx.Health(cancelled) {
		t.Error("expected unhealthy with cancelled context")
	}
}

func TestBoltIndex_CancelledContext(t *testing.T) {
	idx := newTestBolt(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := idx.AddBatch(ctx, []string{"a"}, []string{"t"}, [][]float32{{1}}, []map[string]string{{}}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := idx.Query(ctx, []float32{1}, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
