package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/config"
	"github.com/abhisek/geogem/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "geogem",
	Short: "Georgian vocabulary quizzes in the terminal",
	Long:  "GeoGem drills Georgian words block by block: learn new words, pick translations and review what you know.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides GEOGEM_DB env var)")
	flags.String("server", "", "GeoGem server URL (overrides GEOGEM_SERVER_URL)")
	flags.String("api-version", "", "Server API version; below v2 uses the legacy answer check")
	flags.Duration("timeout", 0, "Timeout of each server call")
	flags.String("env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the dotenv file and the environment, then applies the
// command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("api-version"); v != "" {
		cfg.APIVersion = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / GEOGEM_DB (already
// folded into cfg), then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the local database.
func openStore(cmd *cobra.Command) (config.Config, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}
