package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/penwyp/go-health-monitor/internal/application/tracker"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	syncWatch    bool
	syncInterval time.Duration
	syncPull     bool
	syncOutput   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued writes and optionally refresh from the service",
	Long: `Replays the offline queue once. With --watch it keeps running, replaying
whenever another process queues a write and every --interval, until interrupted.
With --pull the local copy is replaced by the service's once the queue is empty.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncWatch, "watch", false,
		"Keep replaying until interrupted")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 30*time.Second,
		"Replay interval in watch mode")
	syncCmd.Flags().BoolVar(&syncPull, "pull", false,
		"Fetch the service copy after an empty-queue replay")
	addOutputFlag(syncCmd, &syncOutput)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncWatch && syncPull {
		return fmt.Errorf("--pull cannot be combined with --watch")
	}

	return withTracker(func(t *tracker.Tracker) error {
		if syncWatch {
			ctx, cancel := interruptContext(commandContext(cmd))
			defer cancel()

			return t.Watch(ctx, syncInterval, func(report queue.Report, err error) {
				if err != nil {
					util.LogError("Replay failed", util.F("error", err.Error()))
					fmt.Fprintf(cmd.ErrOrStderr(), "replay failed: %v\n", err)
					return
				}
				if len(report.Outcomes) == 0 {
					return
				}
				if err := render(cmd, syncOutput, replayReport(report)); err != nil {
					util.LogWarn("Failed to render replay", util.F("error", err.Error()))
				}
			})
		}

		report, err := t.Sync(commandContext(cmd), "")
		if err != nil {
			return err
		}
		if err := render(cmd, syncOutput, replayReport(report)); err != nil {
			return err
		}

		if !syncPull {
			return nil
		}
		if report.Remaining > 0 {
			return fmt.Errorf("%w: %d writes still queued", tracker.ErrPendingActions, report.Remaining)
		}
		md, err := t.Pull(commandContext(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d weigh-ins, %d water days, %d fasts\n",
			len(md.BodyRecords), len(md.WaterRecords), len(md.FastingRecords))
		return nil
	})
}

// interruptContext returns a context cancelled on the first interrupt
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
