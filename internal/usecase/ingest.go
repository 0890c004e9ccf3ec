package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundrag/internal/adapter/fs"
	"fundrag/internal/domain"
	"fundrag/internal/port"
)

// IngestService turns source documents into chunk artifacts:
// walk -> read -> normalize -> chunk -> write JSON artifact. Documents
// are independent, so they run on a bounded worker pool; a failing
// document is recorded and skipped, never aborting the run.
type IngestService struct {
	walker     port.FileWalker
	normalizer port.Normalizer
	chunker    port.Chunker
	logger     *zap.Logger

	artifactDir string
	aggressive  bool
	workers     int
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(
	walker port.FileWalker,
	normalizer port.Normalizer,
	chunker port.Chunker,
	artifactDir string,
	aggressive bool,
	workers int,
	logger *zap.Logger,
) *IngestService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestService{
		walker:      walker,
		normalizer:  normalizer,
		chunker:     chunker,
		artifactDir: artifactDir,
		aggressive:  aggressive,
		workers:     workers,
		logger:      logger,
	}
}

// IngestResult summarizes one ingestion run. Errors hold one message per
// failed document so callers can retry individually.
type IngestResult struct {
	RunID          string
	FilesProcessed int
	FilesFailed    int
	ChunksCreated  int
	Errors         []string
}

// Ingest processes every matching document under root. The progress
// callback, if non-nil, receives (done, total) after each document.
func (s *IngestService) Ingest(ctx context.Context, root string, progress func(done, total int)) (*IngestResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	files, err := s.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	if err := os.MkdirAll(s.artifactDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	result := &IngestResult{RunID: uuid.NewString()}
	if len(files) == 0 {
		return result, nil
	}

	type itemOutcome struct {
		chunks int
		err    error
		path   string
	}

	jobs := make(chan port.FileInfo)
	outcomes := make(chan itemOutcome)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for file := range jobs {
				n, err := s.ingestFile(root, file.Path, result.RunID)
				outcomes <- itemOutcome{chunks: n, err: err, path: file.Path}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	done := 0
	for outcome := range outcomes {
		done++
		if outcome.err != nil {
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", outcome.path, outcome.err))
			s.logger.Warn("document ingestion failed",
				zap.String("path", outcome.path),
				zap.Error(outcome.err),
			)
		} else {
			result.FilesProcessed++
			result.ChunksCreated += outcome.chunks
		}
		if progress != nil {
			progress(done, len(files))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// ingestFile processes a single document and writes its artifact.
// Returns the number of chunks produced.
func (s *IngestService) ingestFile(root, path, runID string) (int, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	mode := domain.CleanBasic
	if s.aggressive {
		mode = domain.CleanAggressive
	}
	normalized := s.normalizer.Normalize(content, mode)

	chunks := s.chunker.Chunk(normalized.CleanText)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced (empty document?)")
	}

	// The root-relative path keys the artifact, so same-named files in
	// different subdirectories never collide.
	fileName := filepath.Base(path)
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		fileName = filepath.ToSlash(rel)
	}

	artifact := domain.ChunkArtifact{
		FileName:   fileName,
		ChunkCount: len(chunks),
		Metadata: domain.ArtifactMetadata{
			Language:     normalized.Language,
			DocumentType: DocTypeForSource(path),
			Source:       path,
			IngestedAt:   time.Now().UTC().Format(time.RFC3339),
			IngestRunID:  runID,
		},
		Chunks: chunks,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding artifact: %w", err)
	}

	outPath := filepath.Join(s.artifactDir, strings.ReplaceAll(fileName, "/", "_")+".json")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return 0, fmt.Errorf("writing artifact: %w", err)
	}

	s.logger.Debug("document ingested",
		zap.String("path", path),
		zap.String("language", normalized.Language),
		zap.Int("chunks", len(chunks)),
	)

	return len(chunks), nil
}

// DocTypeForSource infers the document type from the source identifier.
func DocTypeForSource(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "web_page"
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".md":
		return "markdown"
	case ".txt", ".text":
		return "text"
	case ".pdf":
		return "policy_pdf_text"
	default:
		return "unknown"
	}
}
