package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/penwyp/go-health-monitor/internal/application/tracker"
	"github.com/penwyp/go-health-monitor/internal/core/health"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// weight set
	weightUnit string

	// fast add
	fastStart    string
	fastEnd      string
	fastDuration time.Duration
	fastPlan     string
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Record body weight",
}

var weightSetCmd = &cobra.Command{
	Use:   "set <value>",
	Short: "Record today's weight; a second weigh-in the same day replaces the first",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeightSet,
}

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Record water intake",
}

var waterAddCmd = &cobra.Command{
	Use:   "add <ml>",
	Short: "Log a drink of <ml> millilitres",
	Args:  cobra.ExactArgs(1),
	RunE:  runWaterAdd,
}

var fastCmd = &cobra.Command{
	Use:   "fast",
	Short: "Record fasting sessions",
}

var fastAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a completed fast",
	Long: `Record a completed fast given by --start and --end, or by --duration
ending at --end. --end defaults to now. Times are read in --timezone and accept
"2006-01-02 15:04" or RFC 3339.`,
	Args: cobra.NoArgs,
	RunE: runFastAdd,
}

var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Sign in as <user-id>; writes are sent for this user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			if err := t.SignIn(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", args[0])
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out; later writes stay local",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			if err := t.SignIn(""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weightCmd, waterCmd, fastCmd, loginCmd, logoutCmd)
	weightCmd.AddCommand(weightSetCmd)
	waterCmd.AddCommand(waterAddCmd)
	fastCmd.AddCommand(fastAddCmd)

	weightSetCmd.Flags().StringVar(&weightUnit, "unit", health.UnitKilogram,
		"Weight unit (kg, lb)")

	fastAddCmd.Flags().StringVar(&fastStart, "start", "",
		"When the fast started")
	fastAddCmd.Flags().StringVar(&fastEnd, "end", "",
		"When the fast ended (default now)")
	fastAddCmd.Flags().DurationVar(&fastDuration, "duration", 0,
		"Fast length, instead of --start (e.g., 16h, 14h30m)")
	fastAddCmd.Flags().StringVar(&fastPlan, "plan", "16:8",
		"Fasting plan name")
}

func withTracker(fn func(t *tracker.Tracker) error) error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()
	return fn(t)
}

func runWeightSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", args[0], err)
	}

	return withTracker(func(t *tracker.Tracker) error {
		res, err := t.UpdateWeight(commandContext(cmd), value, weightUnit)
		if err != nil {
			return err
		}
		printWriteResult(cmd, "Weight "+util.FormatWeight(value, weightUnit), res)
		return nil
	})
}

func runWaterAdd(cmd *cobra.Command, args []string) error {
	ml, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	return withTracker(func(t *tracker.Tracker) error {
		res, err := t.LogWater(commandContext(cmd), ml)
		if err != nil {
			return err
		}
		printWriteResult(cmd, fmt.Sprintf("Water %g ml", ml), res)
		return nil
	})
}

func runFastAdd(cmd *cobra.Command, args []string) error {
	start, end, err := fastWindow(util.GetTimeProvider())
	if err != nil {
		return err
	}

	return withTracker(func(t *tracker.Tracker) error {
		res, err := t.AddFasting(commandContext(cmd), start, end, fastPlan)
		if err != nil {
			return err
		}
		printWriteResult(cmd, fmt.Sprintf("Fast %s (%s)", util.FormatDuration(end.Sub(start)), fastPlan), res)
		return nil
	})
}

// fastWindow resolves the --start, --end and --duration flags
func fastWindow(clock util.Clock) (time.Time, time.Time, error) {
	end := clock.Now()
	if fastEnd != "" {
		t, err := parseLocalTime(fastEnd, clock.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = t
	}

	switch {
	case fastStart != "" && fastDuration != 0:
		return time.Time{}, time.Time{}, fmt.Errorf("use either --start or --duration, not both")
	case fastStart != "":
		start, err := parseLocalTime(fastStart, clock.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		return start, end, nil
	case fastDuration > 0:
		return end.Add(-fastDuration), end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("--start or a positive --duration is required")
	}
}

var localLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04"}

func parseLocalTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return model.ParseTimestamp(value, loc)
}

func printWriteResult(cmd *cobra.Command, what string, res tracker.WriteResult) {
	out := cmd.OutOrStdout()
	switch res.Status {
	case tracker.StatusSynced:
		fmt.Fprintf(out, "%s saved\n", what)
	case tracker.StatusQueued:
		fmt.Fprintf(out, "%s saved locally; service unreachable, queued as %s\n", what, res.ActionID)
	case tracker.StatusLocal:
		fmt.Fprintf(out, "%s saved locally (no user signed in)\n", what)
	}
}

// commandContext returns cmd's context, never nil
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
