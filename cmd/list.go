package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/config"
	"github.com/mle-tools/mle-monitor/internal/render"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a summary table of recorded experiments",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Int("tail", 5, "Number of most recent experiments to show (0 = all)")
	listCmd.Flags().Bool("full", false, "Include per-job resource columns")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	db, err := openProtocol(context.Background(), cfg)
	if err != nil {
		return err
	}

	tail, _ := cmd.Flags().GetInt("tail")
	full, _ := cmd.Flags().GetBool("full")

	rows, err := db.SummaryRows(tail)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}
	fmt.Println(render.SummaryTable(rows, full))
	return nil
}
