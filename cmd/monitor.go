package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/config"
	"github.com/mle-tools/mle-monitor/internal/render"
	"github.com/mle-tools/mle-monitor/internal/tracker"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live experiment monitoring dashboard",
	Long: `Render a periodically refreshing dashboard of the protocol database.
The local file is reloaded on every tick to pick up concurrent writers;
the remote copy is pulled on a much slower cadence.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().Duration("interval", 10*time.Second, "Local reload interval")
	monitorCmd.Flags().Int("pull-every", 30, "Pull from cloud storage every N reloads")
	monitorCmd.Flags().Int("tail", 10, "Number of experiments in the table")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	pullEvery, _ := cmd.Flags().GetInt("pull-every")
	tail, _ := cmd.Flags().GetInt("tail")

	usage := tracker.New(cfg.UsagePath)
	refresh := func() error {
		data, err := db.Monitor(tail)
		if err != nil {
			return err
		}
		// Host utilization is best effort; sampling failures drop the panel
		var usagePanel string
		if sample, err := tracker.Snapshot(); err == nil {
			if history, err := usage.Update(sample); err == nil {
				usagePanel = render.UsagePanel(history)
			}
		}
		// Clear screen and redraw
		fmt.Print("\033[2J\033[H")
		fmt.Println(render.Dashboard(data, usagePanel))
		return nil
	}
	if err := refresh(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ticks++
			if cfg.UseGCSSync && pullEvery > 0 && ticks%pullEvery == 0 {
				// Dual-timer policy: remote pulls run far less often than
				// local reloads.
				if _, err := db.Pull(ctx); err != nil {
					return err
				}
			} else if err := db.Reload(); err != nil {
				return err
			}
			if err := refresh(); err != nil {
				return err
			}
		}
	}
}
