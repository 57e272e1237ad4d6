package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bret/internal/scripting"
	"bret/internal/trial"
)

var (
	runScript   string
	runSessions int
	runSeed     int64
	runBoxes    int
	runPayoff   float64
	runVerbose  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play scripted sessions against the engine",
	Long: `run pilots the task with a JavaScript strategy. The script defines
decide(trial) and returns OPEN or STOP; it sees opened_count, box_count,
and payoff_per_box, but never the bomb. Example strategy:

    function decide(trial) {
        return trial.opened_count < 40 ? OPEN : STOP;
    }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		source, err := os.ReadFile(runScript)
		if err != nil {
			return fmt.Errorf("read strategy: %w", err)
		}

		trialCfg := cfg.TrialConfig()
		if runBoxes != 0 {
			trialCfg.BoxCount = runBoxes
		}
		if runPayoff != 0 {
			trialCfg.PayoffPerBox = decimal.NewFromFloat(runPayoff)
		}

		seed := runSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		db, err := openStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		logger := log.New(os.Stderr, "[run] ", log.LstdFlags)
		runner, err := scripting.NewRunner(string(source), trialCfg, trial.NewSource(seed), db, logger)
		if err != nil {
			return err
		}

		summary, err := runner.Run(runSessions)
		if err != nil {
			return err
		}

		if runVerbose {
			for _, entry := range runner.Logs() {
				fmt.Fprintf(os.Stderr, "%s %s\n", entry.Time.Format(time.TimeOnly), entry.Message)
			}
		}
		fmt.Printf("seed=%d %s\n", seed, summary)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "path to the strategy script (required)")
	runCmd.Flags().IntVar(&runSessions, "sessions", 100, "number of sessions to play")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "bomb draw seed (0 = time-based)")
	runCmd.Flags().IntVar(&runBoxes, "boxes", 0, "box count (overrides config)")
	runCmd.Flags().Float64Var(&runPayoff, "payoff", 0, "payoff per safe box (overrides config)")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "print strategy log output")
	runCmd.MarkFlagRequired("script")
}
