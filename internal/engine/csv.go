package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// WriteTradesCSVFile writes the raw trade ledger to a CSV file at path.
func WriteTradesCSVFile(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()
	return WriteTradesCSV(f, result)
}

// WriteTradesCSV writes the trade ledger to any io.Writer as CSV. Pass
// os.Stdout for debugging, or a file.
func WriteTradesCSV(w io.Writer, result *Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"timestamp",
		"symbol",
		"action",
		"price",
		"quantity",
		"commission",
		"portfolio_value",
		"reason",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range result.Trades {
		record := []string{
			t.Timestamp.Format(time.RFC3339),
			t.Symbol,
			string(t.Action),
			t.Price.String(),
			t.Quantity.String(),
			t.Commission.String(),
			t.PortfolioValue.String(),
			t.Reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteEquityCSVFile writes the snapshot series (equity curve) to a CSV file.
func WriteEquityCSVFile(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create equity file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"timestamp", "cash", "position_value", "total_value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range result.Snapshots {
		record := []string{
			s.Time.Format(time.RFC3339),
			s.Cash.String(),
			s.PositionValue.String(),
			s.TotalValue.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return cw.Error()
}

// WriteComparisonCSV writes one metrics row per result, for cross-run tables.
func WriteComparisonCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"symbol",
		"strategy",
		"final_value",
		"total_return_pct",
		"annual_return_pct",
		"sharpe_ratio",
		"sortino_ratio",
		"max_drawdown_pct",
		"volatility_pct",
		"win_rate_pct",
		"profit_loss_ratio",
		"total_trades",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range results {
		if r == nil || r.Report == nil {
			continue
		}
		rep := r.Report
		record := []string{
			r.Symbol,
			r.Strategy,
			rep.FinalValue.StringFixed(2),
			rep.TotalReturn.StringFixed(4),
			rep.AnnualReturn.StringFixed(4),
			rep.SharpeRatio.StringFixed(4),
			rep.SortinoRatio.StringFixed(4),
			rep.MaxDrawdown.StringFixed(4),
			rep.Volatility.StringFixed(4),
			rep.WinRate.StringFixed(2),
			rep.ProfitLossRatio.StringFixed(4),
			fmt.Sprintf("%d", rep.TotalTrades),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
