package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/Brandon689/reqauth/internal/config"
	"github.com/Brandon689/reqauth/redact"
	"github.com/spf13/cobra"
)

var (
	cfg  *config.Config
	logf func(format string, args ...any)
)

var rootCmd = &cobra.Command{
	Use:   "authd",
	Short: "Request authentication and session service",
	Long: `authd guards an HTTP API with one of four authenticators selected by
AUTH_TYPE: auth, basic_auth, session_auth or session_exp_auth.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			warnings []error
			err      error
		)
		cfg, warnings, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if dbPath, _ := cmd.Flags().GetString("db-path"); dbPath != "" {
			cfg.DBPath = dbPath
		}
		logf = redact.Logf(log.Printf, ";", cfg.PIIFields...)
		for _, w := range warnings {
			logf("WARNING: %v; sessions will not expire", w)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-path", "", "SQLite user database (env: DB_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(hashCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
