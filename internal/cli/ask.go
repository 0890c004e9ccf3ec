package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fundrag/internal/adapter/cache"
	"fundrag/internal/adapter/guardrails"
	"fundrag/internal/adapter/normalizer"
	"fundrag/internal/usecase"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a grounded question against the knowledge base",
	Long: `Retrieve the most relevant passages for a question, generate an
answer with the configured LLM, and gate the result through the evidence
and answer guardrails.

Examples:
  fundrag ask "What seed funding schemes exist for startups?"
  fundrag ask --top-k 10 --json "incubation support"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer envelope as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	index, err := newIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	llmClient, err := newLLM(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	queryCache := cache.NewQueryCache(cfg.Ask.CacheSize, time.Duration(cfg.Ask.CacheTTLSeconds)*time.Second)
	retriever := cache.NewCachedRetriever(usecase.NewRetriever(embedder, index, logger), queryCache)

	svc := usecase.NewAskService(
		normalizer.New(),
		retriever,
		llmClient,
		guardrails.New(),
		usecase.AskOptions{
			TopK:          cfg.Ask.TopK,
			MaxContext:    cfg.Ask.MaxContext,
			MinChunkChars: cfg.Ask.MinChunkChars,
		},
		logger,
	)

	envelope := svc.Ask(cmd.Context(), args[0], askTopK)

	if askJSON {
		out, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode envelope: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(envelope.Answer)
	if len(envelope.References) > 0 {
		fmt.Printf("\nReferences:\n")
		for _, ref := range envelope.References {
			fmt.Printf("  - %s (%s, %s)\n", ref.SourceFile, ref.Language, ref.DocumentType)
		}
	}
	fmt.Printf("\nStatus: %s\n", envelope.Status)

	return nil
}
