package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fundrag/internal/adapter/chunker"
	"fundrag/internal/adapter/fs"
	"fundrag/internal/adapter/normalizer"
	"fundrag/internal/usecase"
)

var ingestAggressive bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk source documents into artifacts",
	Long: `Normalize, language-detect and chunk text documents under the given
path. One JSON artifact per document is written to the artifact directory,
ready for 'fundrag build'.

Examples:
  fundrag ingest ./docs
  fundrag ingest ./scans --aggressive   # heavy cleaning for bad OCR output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestAggressive, "aggressive", false, "aggressive cleaning for low-quality scans")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	aggressive := cfg.Ingest.Aggressive || ingestAggressive

	svc := usecase.NewIngestService(
		fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		normalizer.New(),
		chunker.NewHybridChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		artifactDir(cfg),
		aggressive,
		cfg.Ingest.Workers,
		logger,
	)

	fmt.Printf("Scanning %s...\n", path)

	bar := newProgress("Ingesting")
	result, err := svc.Ingest(cmd.Context(), path, bar.update)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files processed: %d\n", result.FilesProcessed)
	fmt.Printf("  Files failed:    %d\n", result.FilesFailed)
	fmt.Printf("  Chunks created:  %d\n", result.ChunksCreated)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nArtifacts stored in: %s\n", artifactDir(cfg))
	return nil
}
