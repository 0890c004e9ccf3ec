package embedding

import (
	"sync"

	"fundrag/internal/port"
)

// Cache is a bounded, thread-safe LRU of text -> vector. Capacity is
// fixed at construction so memory use stays predictable.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]float32
	order   []string
	maxSize int
}

// NewCache creates a cache holding at most maxSize vectors.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 5000
	}
	return &Cache{
		entries: make(map[string][]float32),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns the cached vector for text, refreshing its recency.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.moveToEnd(text)
	return vec, true
}

// Put stores the vector for text, evicting the least recently used entry
// when full.
func (c *Cache) Put(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[text]; exists {
		c.entries[text] = vec
		c.moveToEnd(text)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[text] = vec
	c.order = append(c.order, text)
}

// Size returns the number of cached vectors.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *Cache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}

// CachedEmbedder memoizes an inner embedder by exact input string.
// Callers must not mutate returned vectors.
type CachedEmbedder struct {
	inner port.Embedder
	cache *Cache
}

// NewCachedEmbedder wraps inner with a bounded LRU cache.
func NewCachedEmbedder(inner port.Embedder, cache *Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (e *CachedEmbedder) Embed(text string) ([]float32, error) {
	if vec, hit := e.cache.Get(text); hit {
		return vec, nil
	}

	vec, err := e.inner.Embed(text)
	if err != nil {
		return nil, err
	}

	e.cache.Put(text, vec)
	return vec, nil
}

func (e *CachedEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}
