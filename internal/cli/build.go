package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fundrag/internal/usecase"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed chunk artifacts into the vector index",
	Long: `Read the chunk artifacts produced by 'fundrag ingest', generate an
embedding per chunk, and insert them into the vector index in
per-document batches.

Examples:
  fundrag build
  fundrag build --config fundrag.yaml`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	index, err := newIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	svc := usecase.NewBuildService(embedder, index, logger)

	bar := newProgress("Indexing")
	result, err := svc.Build(cmd.Context(), artifactDir(cfg), bar.update)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	count, _ := index.Count(cmd.Context())

	fmt.Printf("\nIndex build complete:\n")
	fmt.Printf("  Artifacts indexed: %d\n", result.FilesIndexed)
	fmt.Printf("  Chunks indexed:    %d\n", result.ChunksIndexed)
	fmt.Printf("  Chunks skipped:    %d\n", result.ChunksSkipped)
	fmt.Printf("  Total records:     %d\n", count)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}
