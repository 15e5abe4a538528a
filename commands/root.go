package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-health-monitor/internal/application/tracker"
	"github.com/penwyp/go-health-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-health-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug     bool
	logFormat string

	// Data path
	dataDir string

	// Service related
	serverURL      string
	userID         string
	requestTimeout time.Duration

	// Display related
	timezone string

	// Offline queue
	queueCapacity int
	replayPolicy  string

	rootCmd = &cobra.Command{
		Use:   "go-health-monitor",
		Short: "Local-first fasting, hydration and weight tracker",
		Long: `go-health-monitor records fasting sessions, water intake and body weight,
and reports them as daily charts and an activity timeline.

Writes go to the health service first. When the service cannot be reached they
are saved locally and queued, and "sync" replays the queue later.

Examples:
  go-health-monitor weight set 72.4                  # Record today's weight
  go-health-monitor water add 250                    # Log a 250 ml drink
  go-health-monitor fast add --duration 16h          # Fast that ended now
  go-health-monitor chart intake --days 14 -o bars   # Two weeks of hydration
  go-health-monitor timeline --limit 20              # Latest activity
  go-health-monitor sync --watch                     # Replay queued writes as they appear`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

const (
	defaultDataDir   = "~/.go-health-monitor"
	defaultServerURL = "http://127.0.0.1:8080"
)

func init() {
	// Storage
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir,
		"Directory holding the state file and logs")

	// Service
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL,
		"Health service base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "",
		"User id for service writes (defaults to the signed-in user)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 5*time.Second,
		"Service request timeout")

	// Display
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")

	// Offline queue
	rootCmd.PersistentFlags().IntVar(&queueCapacity, "queue-capacity", 500,
		"Maximum number of queued offline writes")
	rootCmd.PersistentFlags().StringVar(&replayPolicy, "policy", "retry",
		"What replay does with a rejected write (retry, drop, requeue)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")
}

// setup initialises logging and the time provider before any subcommand runs
func setup(cmd *cobra.Command, args []string) error {
	// Determine log level based on debug flag
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	dataDir = expandPath(dataDir)
	logFile := filepath.Join(dataDir, "logs", "app.log")
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(util.LoggerConfig{
		Level:   logLevel,
		File:    logFile,
		Console: debug,
		Format:  util.ParseLogFormat(logFormat),
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := util.InitializeTimeProvider(timezone); err != nil {
		return err
	}
	return nil
}

// trackerConfig builds the tracker configuration from the persistent flags
func trackerConfig() *tracker.Config {
	return &tracker.Config{
		DataDir:        dataDir,
		ServerURL:      serverURL,
		UserID:         userID,
		RequestTimeout: requestTimeout,
		Timezone:       timezone,
		QueueCapacity:  queueCapacity,
		ReplayPolicy:   replayPolicy,
	}
}

func newTracker() (*tracker.Tracker, error) {
	return tracker.NewTracker(trackerConfig())
}

// render writes r to the command's output in the requested format
func render(cmd *cobra.Command, format string, r *formatter.Report) error {
	f, err := formatter.New(format)
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), r)
}

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", formatter.FormatTable,
		"Output format (table, json, csv, bars)")
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
