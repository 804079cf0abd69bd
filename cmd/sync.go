package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the protocol database to cloud storage",
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the remote protocol copy",
	RunE:  runSyncPull,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the local protocol to cloud storage",
	RunE:  runSyncPush,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	cfg.UseGCSSync = true
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	// openProtocol already pulled once on first load; pull again explicitly
	// so the command reports the outcome.
	ok, err := db.Pull(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("failed to pull protocol from gs://%s/%s", cfg.BucketName, cfg.GCSProtocolPath)
	}
	fmt.Printf("Pulled protocol (%d experiments)\n", db.Len())
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	cfg.UseGCSSync = true
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	if !db.Push(ctx) {
		return fmt.Errorf("failed to push protocol to gs://%s/%s", cfg.BucketName, cfg.GCSProtocolPath)
	}
	fmt.Println("Pushed protocol to cloud storage")
	return nil
}
