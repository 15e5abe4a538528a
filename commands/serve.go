package commands

import (
	"fmt"
	"path/filepath"

	"github.com/penwyp/go-health-monitor/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health service backed by SQLite",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080",
		"Listen address")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "",
		"SQLite database path (default <data-dir>/health.db)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dbPath := serveDBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "health.db")
	}
	dbPath = expandPath(dbPath)
	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	srv, err := server.NewServer(&server.Config{Addr: serveAddr, DBPath: dbPath})
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext(commandContext(cmd))
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (database %s)\n", serveAddr, dbPath)
	return srv.Start(ctx)
}
