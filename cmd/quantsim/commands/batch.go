package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quantsim/internal/config"
	"quantsim/internal/engine"
	"quantsim/strategies"
)

func newBatchCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the configured strategy over every symbol in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			strategy, err := strategies.ForName(cfg.Strategy, cfg.Params)
			if err != nil {
				return err
			}

			db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			requests := make([]engine.RunRequest, 0, len(cfg.Symbols))
			for _, symbol := range cfg.Symbols {
				candles, err := fetchCandles(ctx, db, cfg, symbol)
				if err != nil {
					return fmt.Errorf("%s: %w", symbol, err)
				}
				requests = append(requests, engine.RunRequest{
					Symbol:   symbol,
					Strategy: strategy,
					Config:   cfg.SimulationConfig(),
					Candles:  candles,
				})
			}

			runner := engine.NewRunner(cfg.Workers)
			runner.ShowProgress(true)
			outcomes := runner.Run(ctx, requests)

			results := make([]*engine.Result, 0, len(outcomes))
			failed := 0
			for _, outcome := range outcomes {
				if outcome.Err != nil {
					failed++
					log.Error().Err(outcome.Err).Str("symbol", outcome.Symbol).Msg("run failed")
					continue
				}
				engine.PrintReport(os.Stdout, outcome.Result)
				results = append(results, outcome.Result)
			}

			if export && len(results) > 0 {
				if err := exportComparison(cfg.OutputDir, results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "write a strategy comparison CSV to the output directory")
	return cmd
}

func exportComparison(dir string, results []*engine.Result) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, "comparison.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create comparison file: %w", err)
	}
	defer f.Close()
	if err := engine.WriteComparisonCSV(f, results); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("runs", len(results)).Msg("exported comparison")
	return nil
}
