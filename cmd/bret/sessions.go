package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bret/internal/store"
)

var (
	listPage    int
	listPerPage int
	listOutcome string
	exportOut   string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and export the session archive",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		if db == nil {
			return fmt.Errorf("no session archive configured")
		}
		defer db.Close()

		list, err := db.ListSessions(store.SessionsQuery{
			Outcome: listOutcome,
			Page:    listPage,
			PerPage: listPerPage,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tSOURCE\tBOXES\tOPENED\tOUTCOME\tPAYOFF\tSTARTED")
		for _, s := range list.Sessions {
			payoff := "-"
			if s.Payoff != nil {
				payoff = s.Payoff.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
				s.ID, s.Source, s.BoxCount, s.OpenedCount, s.Outcome, payoff,
				s.StartedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Printf("page %d of %d (%d sessions)\n", list.Page, list.TotalPages, list.TotalCount)
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session archive as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		if db == nil {
			return fmt.Errorf("no session archive configured")
		}
		defer db.Close()

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return db.ExportCSV(out)
	},
}

func init() {
	sessionsListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	sessionsListCmd.Flags().IntVar(&listPerPage, "per-page", 25, "sessions per page")
	sessionsListCmd.Flags().StringVar(&listOutcome, "outcome", "", "filter by outcome (safe, bombed, unrevealed)")
	sessionsExportCmd.Flags().StringVar(&exportOut, "out", "", "write CSV to file instead of stdout")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}
