// Package cli implements ironcyclectl, the command-line client for running a
// program against a local SQLite database.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/ironcycle/internal/storage"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Version is reported by the version command and the MCP handshake.
var Version = "dev"

// localUserID owns every workout created from the CLI.
const localUserID = 1

// NewRootCmd builds the ironcyclectl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ironcyclectl",
		Short:         "Run a periodized strength program from the terminal",
		Long:          "ironcyclectl tracks a 21-week, three-block strength program: it prescribes each day's sets and adjusts loads from what you actually lifted.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", "", "Path to SQLite database file (overrides IRONCYCLE_DB env var)")
	root.PersistentFlags().String("workout", "", "Workout ID (defaults to the active workout)")
	root.PersistentFlags().Bool("verbose", false, "Log debug output to stderr")

	root.AddCommand(
		newWeeksCmd(),
		newInitCmd(),
		newStatusCmd(),
		newPlanCmd(),
		newCompleteCmd(),
		newProgressWeekCmd(),
		newHistoryCmd(),
		newPushCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs ironcyclectl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then IRONCYCLE_DB env var, then ~/.ironcycle/ironcycle.db.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, ensureDir(p)
	}
	if p := os.Getenv("IRONCYCLE_DB"); p != "" {
		return p, ensureDir(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	p := filepath.Join(home, ".ironcycle", "ironcycle.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}

func logger(cmd *cobra.Command) *slog.Logger {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openService opens the local database and wraps it in a tracker service.
// The returned func closes the database.
func openService(cmd *cobra.Command) (*tracker.Service, func(), error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	svc, err := tracker.New(db, tracker.Program{}, nil, logger(cmd))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return svc, func() { db.Close() }, nil
}

// workoutID returns the --workout flag or the active workout's ID.
func workoutID(cmd *cobra.Command, svc *tracker.Service) (uuid.UUID, error) {
	if raw, _ := cmd.Flags().GetString("workout"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid workout ID %q: %w", raw, err)
		}
		return id, nil
	}
	w, err := svc.ActiveWorkout(cmd.Context(), localUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no active workout (run ironcyclectl init first): %w", err)
	}
	return w.ID, nil
}
