package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/readupapp/readup-server/internal/config"
	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/logger"
	"github.com/readupapp/readup-server/internal/service"
	"github.com/readupapp/readup-server/internal/store/sqlite"
	"github.com/readupapp/readup-server/internal/validation"
)

var (
	dataPath string
	envFile  string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "readupctl",
	Short: "Administer a ReadUp server data directory",
	Long: `readupctl works directly against the server's data directory.

Commands that read lifetime totals open the rollup store, which allows a single
process at a time: stop the server before running them.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Directory holding the database and keys (default: DATA_PATH or ~/ReadUp/data)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")
}

// loadConfig resolves configuration the same way the server does, with the
// CLI's persistent flags taking precedence.
func loadConfig() (*config.Config, error) {
	args := []string{"--env-file", envFile}
	if dataPath != "" {
		args = append(args, "--data-path", dataPath)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

func defaultGoals(cfg *config.Config) domain.Goals {
	return domain.Goals{
		DailyGoalMinutes: cfg.Goals.DailyMinutes,
		StreakGoal:       cfg.Goals.StreakDays,
		BooksPerYearGoal: cfg.Goals.BooksPerYear,
	}
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return logger.New(logger.Config{
		Writer: os.Stderr,
		Level:  slog.LevelDebug,
	}).Logger
}

// openStore opens the relational store for the configured data directory.
func openStore(cfg *config.Config, log *slog.Logger) (*sqlite.Store, error) {
	st, err := sqlite.Open(cfg.DatabasePath(), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// noStreams satisfies service.SessionCloser outside the server, where no
// event streams are connected.
type noStreams struct{}

func (noStreams) DisconnectUser(string) {}

// accountService builds an account service for user and catalog commands. It
// never touches lifetime totals, so the rollup store stays closed.
func accountService(st *sqlite.Store, log *slog.Logger) *service.AccountService {
	return service.NewAccountService(st, nil, noStreams{}, validation.New(), log)
}

func closeQuietly(w io.Closer) {
	_ = w.Close()
}
