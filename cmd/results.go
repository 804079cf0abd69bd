package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/archive"
	"github.com/mle-tools/mle-monitor/internal/config"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Archive experiment results in cloud storage",
}

var resultsStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Zip & upload an experiment's result directory",
	Long: `Zip the experiment directory and upload it to the results bucket under
the experiment's content hash. Marks the record as stored in the cloud.`,
	RunE: runResultsStore,
}

var resultsRetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Download & unpack an experiment's result archive",
	RunE:  runResultsRetrieve,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsStoreCmd)
	resultsCmd.AddCommand(resultsRetrieveCmd)

	resultsStoreCmd.Flags().String("experiment-id", "", "Experiment ID (defaults to the last experiment)")
	resultsRetrieveCmd.Flags().String("experiment-id", "", "Experiment ID (defaults to the last experiment)")
	resultsRetrieveCmd.Flags().String("dest", "", "Destination directory (defaults to the experiment ID)")
}

func runResultsStore(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("experiment-id")
	exp, err := db.Get(id)
	if err != nil {
		return fmt.Errorf("failed to look up experiment: %w", err)
	}

	client, err := newArchiveClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := archive.Store(ctx, client, exp.ExperimentDir, exp.Hash); err != nil {
		return err
	}
	if err := db.Update(id, map[string]any{"stored_in_cloud": true}, true); err != nil {
		return err
	}
	pushProtocol(ctx, db)

	fmt.Printf("Stored results of %s\n", exp.ExperimentDir)
	fmt.Printf("  Remote path: experiments/%s.zip\n", exp.Hash)
	return nil
}

func runResultsRetrieve(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("experiment-id")
	exp, err := db.Get(id)
	if err != nil {
		return fmt.Errorf("failed to look up experiment: %w", err)
	}

	dest, _ := cmd.Flags().GetString("dest")
	if dest == "" {
		if id == "" {
			dest = fmt.Sprintf("%d", db.LastID())
		} else {
			dest = id
		}
	}

	client, err := newArchiveClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := archive.Retrieve(ctx, client, exp.Hash, dest); err != nil {
		return err
	}
	if err := db.Update(id, map[string]any{"retrieved_results": true}, true); err != nil {
		return err
	}
	pushProtocol(ctx, db)

	fmt.Printf("Successfully retrieved results into %s\n", dest)
	fmt.Printf("  Remote path: experiments/%s.zip\n", exp.Hash)
	return nil
}
