package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundrag/internal/domain"
)

func sampleResult(text string) domain.RetrievalResult {
	return domain.RetrievalResult{
		{Text: text, Metadata: map[string]string{"source_file": "doc.txt"}},
	}
}

func TestQueryCache_HitAndMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	if _, hit := c.Get("query", 5); hit {
		t.Error("expected miss on empty cache")
	}

	c.Put("query", 5, sampleResult("cached passage"))
	result, hit := c.Get("query", 5)
	if !hit {
		t.Fatal("expected hit")
	}
	if result[0].Text != "cached passage" {
		t.Errorf("unexpected cached result %v", result)
	}

	// Same query with different topK is a distinct key.
	if _, hit := c.Get("query", 10); hit {
		t.Error("expected miss for different topK")
	}
}

func TestQueryCache_TTLExpiry(t *testing.T) {
	c := NewQueryCache(10, 10*time.Millisecond)

	c.Put("query", 5, sampleResult("stale"))
	time.Sleep(25 * time.Millisecond)

	if _, hit := c.Get("query", 5); hit {
		t.Error("expected expired entry to miss")
	}
	if c.Size() != 0 {
		t.Errorf("expected expired entry removed, size %d", c.Size())
	}
}

func TestQueryCache_InvalidateBumpsGeneration(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	c.Put("query", 5, sampleResult("pre-build"))
	c.Invalidate()

	if _, hit := c.Get("query", 5); hit {
		t.Error("expected miss after invalidation")
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache after invalidation, size %d", c.Size())
	}

	// New entries after invalidation are served normally.
	c.Put("query", 5, sampleResult("post-build"))
	result, hit := c.Get("query", 5)
	if !hit || result[0].Text != "post-build" {
		t.Errorf("expected post-build entry, hit=%v result=%v", hit, result)
	}
}

func TestQueryCache_EvictsOldest(t *testing.T) {
	c := NewQueryCache(2, time.Minute)

	c.Put("a", 5, sampleResult("a"))
	c.Put("b", 5, sampleResult("b"))
	c.Put("c", 5, sampleResult("c"))

	if _, hit := c.Get("a", 5); hit {
		t.Error("expected oldest entry evicted")
	}
	if _, hit := c.Get("c", 5); !hit {
		t.Error("expected newest entry retained")
	}
}

// countingRetriever counts how often Search reaches the real retriever.
type countingRetriever struct {
	calls  int
	result domain.RetrievalResult
	err    error
}

func (r *countingRetriever) Search(ctx context.Context, query string, topK int) (domain.RetrievalResult, error) {
	r.calls++
	return r.result, r.err
}

func TestCachedRetriever_CachesResults(t *testing.T) {
	inner := &countingRetriever{result: sampleResult("passage")}
	r := NewCachedRetriever(inner, NewQueryCache(10, time.Minute))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		result, err := r.Search(ctx, "funding schemes", 5)
		if err != nil {
			t.Fatal(err)
		}
		if result[0].Text != "passage" {
			t.Errorf("unexpected result %v", result)
		}
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestCachedRetriever_ErrorsNotCached(t *testing.T) {
	inner := &countingRetriever{err: errors.New("index unavailable")}
	r := NewCachedRetriever(inner, NewQueryCache(10, time.Minute))

	ctx := context.Background()
	if _, err := r.Search(ctx, "q", 5); err == nil {
		t.Fatal("expected error")
	}
	if _, err := r.Search(ctx, "q", 5); err == nil {
		t.Fatal("expected error on retry")
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestCachedRetriever_EmptyResultCached(t *testing.T) {
	inner := &countingRetriever{result: domain.RetrievalResult{}}
	r := NewCachedRetriever(inner, NewQueryCache(10, time.Minute))

	ctx := context.Background()
	if _, err := r.Search(ctx, "nothing matches", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Search(ctx, "nothing matches", 5); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected empty result to be cached, got %d inner calls", inner.calls)
	}
}
