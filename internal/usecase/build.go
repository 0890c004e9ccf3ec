package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"fundrag/internal/adapter/embedding"
	"fundrag/internal/domain"
	"fundrag/internal/port"
)

// BuildService loads chunk artifacts, embeds their chunks and inserts
// them into the vector index in per-document batches. Batches are the
// atomicity unit: one bad artifact never aborts the rest of the build.
type BuildService struct {
	embedder port.Embedder
	index    port.VectorIndex
	logger   *zap.Logger
}

// NewBuildService creates the index build step.
func NewBuildService(embedder port.Embedder, index port.VectorIndex, logger *zap.Logger) *BuildService {
	return &BuildService{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// BuildResult summarizes an index build.
type BuildResult struct {
	FilesIndexed  int
	ChunksIndexed int
	ChunksSkipped int
	Errors        []string
}

// Build indexes every artifact in artifactDir. The progress callback, if
// non-nil, receives (done, total) after each artifact.
func (s *BuildService) Build(ctx context.Context, artifactDir string, progress func(done, total int)) (*BuildResult, error) {
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("reading artifact directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	result := &BuildResult{}
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		indexed, skipped, err := s.buildFile(ctx, filepath.Join(artifactDir, name), name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			s.logger.Warn("artifact indexing failed",
				zap.String("artifact", name),
				zap.Error(err),
			)
		} else {
			result.FilesIndexed++
			result.ChunksIndexed += indexed
			result.ChunksSkipped += skipped
		}
		if progress != nil {
			progress(i+1, len(files))
		}
	}

	return result, nil
}

// buildFile embeds and inserts one artifact as a single batch.
func (s *BuildService) buildFile(ctx context.Context, path, name string) (indexed, skipped int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading artifact: %w", err)
	}

	var artifact domain.ChunkArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return 0, 0, fmt.Errorf("decoding artifact: %w", err)
	}

	var (
		ids       []string
		texts     []string
		vectors   [][]float32
		metadatas []map[string]string
	)

	for i, chunk := range artifact.Chunks {
		if strings.TrimSpace(chunk) == "" {
			skipped++
			continue
		}

		vec, err := s.embedder.Embed(chunk)
		if err != nil {
			return 0, 0, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		if embedding.IsZeroVector(vec) {
			skipped++
			continue
		}

		ids = append(ids, fmt.Sprintf("%s_%d", artifact.FileName, i))
		texts = append(texts, chunk)
		vectors = append(vectors, vec)
		metadatas = append(metadatas, map[string]string{
			"source_file":   artifact.FileName,
			"language":      artifact.Metadata.Language,
			"document_type": artifact.Metadata.DocumentType,
		})
	}

	if len(ids) == 0 {
		return 0, skipped, nil
	}

	if err := s.index.AddBatch(ctx, ids, texts, vectors, metadatas); err != nil {
		return 0, 0, fmt.Errorf("inserting batch: %w", err)
	}

	s.logger.Debug("artifact indexed",
		zap.String("artifact", name),
		zap.Int("chunks", len(ids)),
	)

	return len(ids), skipped, nil
}
