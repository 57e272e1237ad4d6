package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bret/internal/session"
	"bret/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a participant session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		logger := log.New(os.Stderr, "[bret] ", log.LstdFlags)
		sessions := session.New(db, nil, logger)

		model, err := tui.NewModel(sessions, cfg.TrialConfig())
		if err != nil {
			return fmt.Errorf("start trial: %w", err)
		}

		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}
