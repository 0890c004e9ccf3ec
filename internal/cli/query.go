package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fundrag/internal/usecase"
)

var (
	queryText   string
	queryTopK   int
	queryJSON   bool
	queryFilter []string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Inspect raw retrieval results",
	Long: `Embed a query and return the closest indexed passages with their
similarity metadata, without the LLM or guardrail stages.

Examples:
  fundrag query -q "seed funding eligibility"
  fundrag query -q "incubation" --top-k 10 --filter language=ta --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().StringArrayVar(&queryFilter, "filter", nil, "metadata filter as key=value (repeatable)")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	index, err := newIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	filter, err := parseFilter(queryFilter)
	if err != nil {
		return err
	}

	topK := cfg.Ask.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	retriever := usecase.NewRetriever(embedder, index, logger)
	results, err := retriever.SearchFiltered(cmd.Context(), queryText, topK, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("%d. %s (%s, %s)\n", i+1,
			r.Metadata["source_file"],
			r.Metadata["language"],
			r.Metadata["document_type"],
		)
		fmt.Printf("   %s\n\n", snippet(r.Text, 200))
	}

	return nil
}

// parseFilter turns repeated key=value flags into a metadata filter.
func parseFilter(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
