package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fundrag/internal/domain"
)

// ChromaIndex is a vector index backed by a Chroma server's REST API.
// The collection is created with cosine space when missing.
type ChromaIndex struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *zap.Logger
}

// ChromaConfig holds configuration for the Chroma driver.
type ChromaConfig struct {
	// URL is the Chroma server URL (e.g. "http://localhost:8000").
	URL string

	// CollectionName is the collection to use.
	CollectionName string

	// Timeout bounds every request; defaults to 60s.
	Timeout time.Duration
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewChromaIndex connects to the server and resolves the collection.
func NewChromaIndex(c ChromaConfig, logger *zap.Logger) (*ChromaIndex, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}
	if c.CollectionName == "" {
		return nil, fmt.Errorf("chroma collection name is required")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	d := &ChromaIndex{
		baseURL:        c.URL,
		collectionName: c.CollectionName,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}

	collectionID, err := d.getOrCreateCollection(context.Background())
	if err != nil {
		return nil, fmt.Errorf("getting or creating collection %q: %w", c.CollectionName, err)
	}
	d.collectionID = collectionID

	logger.Info("connected to Chroma",
		zap.String("url", c.URL),
		zap.String("collection", c.CollectionName),
	)

	return d, nil
}

func (d *ChromaIndex) collectionsURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/default_tenant/databases/default_database/collections", d.baseURL)
}

// getOrCreateCollection gets the collection or creates it with cosine
// space so similarity ranking matches the local drivers.
func (d *ChromaIndex) getOrCreateCollection(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.collectionsURL()+"/"+d.collectionName, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	createBody := map[string]any{
		"name":     d.collectionName,
		"metadata": map[string]any{"hnsw:space": "cosine"},
	}
	var collection chromaCollection
	if err := d.postJSON(ctx, d.collectionsURL(), createBody, &collection); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}
	return collection.ID, nil
}

// AddBatch adds entries through the collection add endpoint. Chroma
// applies the whole request or rejects it, which gives batch atomicity.
func (d *ChromaIndex) AddBatch(ctx context.Context, ids, texts []string, vectors [][]float32, metadatas []map[string]string) error {
	if len(ids) != len(texts) || len(ids) != len(vectors) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: batch slice lengths mismatch", domain.ErrInvalidEntry)
	}

	body := addRequest{}
	for i := range ids {
		if texts[i] == "" || isZeroVector(vectors[i]) {
			continue
		}
		body.IDs = append(body.IDs, ids[i])
		body.Documents = append(body.Documents, texts[i])
		body.Embeddings = append(body.Embeddings, vectors[i])
		body.Metadatas = append(body.Metadatas, toAnyMap(metadatas[i]))
	}
	if len(body.IDs) == 0 {
		return nil
	}

	return d.postJSON(ctx, d.collectionURL("add"), body, nil)
}

// Upsert replaces or inserts a single entry.
func (d *ChromaIndex) Upsert(ctx context.Context, id, text string, vector []float32, metadata map[string]string) error {
	if text == "" || isZeroVector(vector) {
		return fmt.Errorf("%w: nothing useful to index for id %s", domain.ErrInvalidEntry, id)
	}

	body := addRequest{
		IDs:        []string{id},
		Documents:  []string{text},
		Embeddings: [][]float32{vector},
		Metadatas:  []map[string]any{toAnyMap(metadata)},
	}
	return d.postJSON(ctx, d.collectionURL("upsert"), body, nil)
}

// Delete removes an entry by id.
func (d *ChromaIndex) Delete(ctx context.Context, id string) error {
	body := map[string]any{"ids": []string{id}}
	return d.postJSON(ctx, d.collectionURL("delete"), body, nil)
}

// Query performs a nearest-neighbor search with optional metadata filter.
func (d *ChromaIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) (domain.QueryResponse, error) {
	body := map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas"},
	}
	if len(filter) > 0 {
		body["where"] = toAnyMap(filter)
	}

	var resp struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
	}
	if err := d.postJSON(ctx, d.collectionURL("query"), body, &resp); err != nil {
		return domain.QueryResponse{}, err
	}

	out := domain.QueryResponse{
		Documents: resp.Documents,
		Metadatas: make([][]map[string]string, len(resp.Metadatas)),
	}
	for i, metas := range resp.Metadatas {
		out.Metadatas[i] = make([]map[string]string, len(metas))
		for j, m := range metas {
			out.Metadatas[i][j] = toStringMap(m)
		}
	}
	if len(out.Documents) == 0 {
		out.Documents = [][]string{{}}
		out.Metadatas = [][]map[string]string{{}}
	}
	return out, nil
}

// Count returns the number of entries in the collection.
func (d *ChromaIndex) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.collectionURL("count"), nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: count returned status %d: %s", domain.ErrIndexUnavailable, resp.StatusCode, string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("decoding count: %w", err)
	}
	return count, nil
}

// Health reports whether the server answers a trivial count.
func (d *ChromaIndex) Health(ctx context.Context) bool {
	_, err := d.Count(ctx)
	return err == nil
}

// Close releases no resources; the driver is stateless over HTTP.
func (d *ChromaIndex) Close() error {
	return nil
}

type addRequest struct {
	IDs        []string         `json:"ids"`
	Documents  []string         `json:"documents"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
}

func (d *ChromaIndex) collectionURL(op string) string {
	return fmt.Sprintf("%s/%s/%s", d.collectionsURL(), d.collectionID, op)
}

func (d *ChromaIndex) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", domain.ErrIndexUnavailable, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toStringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
