package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vector index status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	index, err := newIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	driver := cfg.Store.Driver
	if driver == "" {
		driver = "bolt"
	}

	fmt.Printf("Driver:  %s\n", driver)

	if !index.Health(cmd.Context()) {
		fmt.Println("Health:  unreachable")
		return nil
	}
	fmt.Println("Health:  ok")

	count, err := index.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	fmt.Printf("Records: %d\n", count)

	return nil
}
