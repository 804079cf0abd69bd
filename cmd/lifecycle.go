package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/config"
)

var abortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Abort an experiment",
	Long:  "Mark a running experiment as aborted. Prompts for the ID when omitted.",
	RunE:  runAbort,
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete an experiment",
	Long:  "Mark a running experiment as completed, recording the actual stop time and duration.",
	RunE:  runComplete,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an experiment",
	Long:  "Remove an experiment record regardless of its status. Prompts for the ID when omitted.",
	RunE:  runDelete,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show experiment status",
	RunE:  runStatus,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update experiment fields",
	Long: `Update fields of an experiment record, e.g. the completed-job counter
incremented by a training worker as jobs finish.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(updateCmd)

	abortCmd.Flags().String("experiment-id", "", "Experiment ID (interactive prompt when omitted)")
	completeCmd.Flags().String("experiment-id", "", "Experiment ID (defaults to the last experiment)")
	deleteCmd.Flags().String("experiment-id", "", "Experiment ID (interactive prompt when omitted)")
	statusCmd.Flags().String("experiment-id", "", "Experiment ID (defaults to the last experiment)")

	updateCmd.Flags().String("experiment-id", "", "Experiment ID (defaults to the last experiment)")
	updateCmd.Flags().StringArray("field", []string{}, "Field updates in key=value format")
	updateCmd.Flags().Int("completed-jobs", -1, "Set the completed-job counter")
}

func runAbort(cmd *cobra.Command, args []string) error {
	return lifecycleAction(cmd, "abort", func(ctx context.Context, db dbHandle, id string) error {
		return db.Abort(id, true)
	})
}

func runComplete(cmd *cobra.Command, args []string) error {
	return lifecycleAction(cmd, "complete", func(ctx context.Context, db dbHandle, id string) error {
		return db.Complete(id, true)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return lifecycleAction(cmd, "delete", func(ctx context.Context, db dbHandle, id string) error {
		return db.Delete(id, true)
	})
}

// dbHandle narrows the protocol surface the lifecycle commands touch.
type dbHandle interface {
	Abort(id string, save bool) error
	Complete(id string, save bool) error
	Delete(id string, save bool) error
}

func lifecycleAction(cmd *cobra.Command, action string, apply func(ctx context.Context, db dbHandle, id string) error) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("experiment-id")
	if id == "" {
		// Interactive loop: re-prompt on unknown IDs, N or timeout exits
		if err := promptExperimentIDs(db, action, func(id string) error {
			return apply(ctx, db, id)
		}); err != nil {
			return err
		}
		pushProtocol(ctx, db)
		return nil
	}

	if err := apply(ctx, db, id); err != nil {
		return fmt.Errorf("failed to %s experiment %s: %w", action, id, err)
	}
	pushProtocol(ctx, db)
	fmt.Printf("Experiment %s: %s\n", id, action)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("experiment-id")
	status, err := db.Status(id)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	fmt.Printf("%s\n", status)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("experiment-id")
	pairs, _ := cmd.Flags().GetStringArray("field")
	fields, err := parseExtraFields(pairs)
	if err != nil {
		return err
	}
	if completed, _ := cmd.Flags().GetInt("completed-jobs"); completed >= 0 {
		fields["completed_jobs"] = completed
	}
	if len(fields) == 0 {
		return fmt.Errorf("no field updates given")
	}

	if err := db.Update(id, fields, true); err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	pushProtocol(ctx, db)
	return nil
}
