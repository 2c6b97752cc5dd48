package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/config"
	"github.com/ridoystarlord/schemasync/utils"
)

var (
	cfgFile     string
	debug       bool
	databaseURL string
	schemaName  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Declarative PostgreSQL schema migrations",
	Long: `schemasync compares a declared schema with a live PostgreSQL database and
applies the difference as one serializable transaction.

Examples:

  schemasync init
  schemasync diff
  schemasync migrate --dry-run
  schemasync migrate
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.LoadEnv(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}

		loaded, path, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if databaseURL != "" {
			loaded.Database.URL = databaseURL
		}
		if schemaName != "" {
			loaded.Schema.Name = schemaName
		}
		cfg = loaded

		logger, err := utils.SetupLogger(os.Stderr, cfg.Log.Level, debug)
		if err != nil {
			return err
		}
		if path != "" {
			logger.Debug("loaded config", "path", path)
		}
		return nil
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: schemasync.yaml, searched upwards)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database connection string (overrides config and DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&schemaName, "schema-name", "", "Database schema to compare against (default: public)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(healthCmd)
}
