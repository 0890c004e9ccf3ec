package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"fundrag/internal/domain"
)

func TestMemoryIndex_AddBatchAndQuery(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.AddBatch(ctx,
		[]string{"a", "b"},
		[]string{"funding scheme text", "other text"},
		[][]float32{{1, 0}, {0, 1}},
		[]map[string]string{{"language": "en"}, {"language": "ta"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := idx.Query(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Documents[0][0] != "funding scheme text" {
		t.Errorf("expected closest document first, got %q", resp.Documents[0][0])
	}
}

func TestMemoryIndex_LengthMismatch(t *testing.T) {
	idx := NewMemoryIndex()

	err := idx.AddBatch(context.Background(), []string{"a"}, nil, nil, nil)
	if !errors.Is(err, domain.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestMemoryIndex_UpsertKeepsSeq(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	// Two identical vectors; the first keeps winning ties even after
	// being upserted, because its insertion sequence is preserved.
	if err := idx.Upsert(ctx, "first", "first text", []float32{1, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "second", "second text", []float32{1, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "first", "first updated", []float32{1, 0}, nil); err != nil {
		t.Fatal(err)
	}

	resp, err := idx.Query(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Documents[0][0] != "first updated" {
		t.Errorf("expected first entry to keep its rank, got %q", resp.Documents[0][0])
	}
}

func TestMemoryIndex_DeleteAndCount(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Upsert(ctx, "a", "text", []float32{1}, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	count, _ := idx.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty index, got %d", count)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	resp := rank(nil, []float32{1, 0}, 5, nil)
	if len(resp.Documents) != 1 || len(resp.Documents[0]) != 0 {
		t.Errorf("expected one empty document list, got %v", resp.Documents)
	}
}
