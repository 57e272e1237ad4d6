// Command bret runs the Bomb Risk Elicitation Task: a terminal session for
// a live participant, an HTTP API for browser-based lab setups, and a
// scripted batch runner for piloting task parameters.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bret/internal/config"
	"bret/internal/store"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "bret",
	Short: "Bomb Risk Elicitation Task toolkit",
	Long: `bret runs a sequential risk-elicitation task: a participant opens
numbered boxes one at a time, any one of which may conceal a bomb, and may
stop at any point to lock in a payoff proportional to boxes opened.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to bret.yaml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the shared config file for the subcommands.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens and migrates the session archive at path. An empty path
// disables archiving.
func openStore(path string) (store.DB, error) {
	if path == "" {
		return nil, nil
	}
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return nil, fmt.Errorf("open session archive: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session archive: %w", err)
	}
	return db, nil
}
