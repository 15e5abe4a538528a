package commands

import (
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/timeline"
	"github.com/penwyp/go-health-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-health-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	timelineLimit  int
	timelineSince  time.Duration
	timelineOutput string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show drinks, weigh-ins and fasts newest first",
	Args:  cobra.NoArgs,
	RunE:  runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().IntVar(&timelineLimit, "limit", 0,
		"Limit result count (0 = unlimited)")
	timelineCmd.Flags().DurationVar(&timelineSince, "since", 0,
		"Only show entries newer than this (e.g., 72h)")
	addOutputFlag(timelineCmd, &timelineOutput)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()

	entries, err := t.Timeline(0)
	if err != nil {
		return err
	}
	if timelineSince > 0 {
		entries = timeline.FilterSince(entries, util.GetTimeProvider().Now().Add(-timelineSince))
	}
	return render(cmd, timelineOutput, formatter.TimelineReport(timeline.Limit(entries, timelineLimit)))
}
