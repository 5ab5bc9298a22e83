package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quantsim/internal/config"
	"quantsim/internal/engine"
	"quantsim/internal/repository"
	"quantsim/strategies"
	"quantsim/types"
)

func newRunCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "run [symbol]",
		Short: "Run a single backtest and print its report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			symbol := cfg.Symbols[0]
			if len(args) == 1 {
				symbol = args[0]
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
			candles, err := fetchCandles(ctx, db, cfg, symbol)
			if err != nil {
				return err
			}

			eng, err := engine.NewEngine(strategy, cfg.SimulationConfig())
			if err != nil {
				return err
			}
			eng.ShowProgress(true)

			result, err := eng.Run(symbol, candles)
			if err != nil {
				return err
			}
			engine.PrintReport(os.Stdout, result)

			if export {
				return exportResult(cfg.OutputDir, result)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "write trade and equity CSV files to the output directory")
	return cmd
}

func openDatabase() (*repository.Database, func(), error) {
	url, err := config.DatabaseURL()
	if err != nil {
		return nil, nil, err
	}
	db, err := repository.NewDatabase(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to candle store: %w", err)
	}
	return &db, db.Close, nil
}

func fetchCandles(ctx context.Context, db *repository.Database, cfg *config.RunConfig, symbol string) ([]types.Candle, error) {
	asset, err := db.GetAssetByTicker(symbol, ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := cfg.TimeRange()
	if err != nil {
		return nil, err
	}
	candles, err := db.GetCandles(asset.Id, symbol, cfg.IntervalType(), start, end, ctx)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("symbol", symbol).
		Int("candles", len(candles)).
		Time("start", start).
		Time("end", end).
		Msg("loaded candles")
	return candles, nil
}

func exportResult(dir string, result *engine.Result) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	stamp := time.Now().UTC().Format("20060102T150405")
	tradesPath := filepath.Join(dir, fmt.Sprintf("%s_%s_trades.csv", result.Symbol, stamp))
	equityPath := filepath.Join(dir, fmt.Sprintf("%s_%s_equity.csv", result.Symbol, stamp))
	if err := engine.WriteTradesCSVFile(tradesPath, result); err != nil {
		return err
	}
	if err := engine.WriteEquityCSVFile(equityPath, result); err != nil {
		return err
	}
	log.Info().Str("trades", tradesPath).Str("equity", equityPath).Msg("exported csv files")
	return nil
}
