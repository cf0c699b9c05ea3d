package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/config"
	"github.com/abhisek/quiztutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quiztutor",
	Short: "Adaptive quiz tutor",
	Long:  "quiztutor serves LLM-generated quizzes and tracks per-topic mastery with an Elo-like score.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides QUIZTUTOR_DB_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDSN returns the database DSN using the --db flag (highest
// priority), then QUIZTUTOR_DB_DSN, then the default SQLite path.
func resolveDSN(cmd *cobra.Command) (store.Driver, string, error) {
	driver := store.Driver(config.FromEnv().DBDriver)

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if driver == store.DriverSQLite {
			if err := store.EnsureDir(p); err != nil {
				return "", "", err
			}
		}
		return driver, p, nil
	}
	if dsn := os.Getenv("QUIZTUTOR_DB_DSN"); dsn != "" {
		return driver, dsn, nil
	}
	if driver != store.DriverSQLite {
		return driver, "", nil
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", "", err
	}
	return driver, p, nil
}

// openStore opens the store selected by the flags and environment.
func openStore(ctx context.Context, cmd *cobra.Command) (*store.Store, error) {
	driver, dsn, err := resolveDSN(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	s, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
