package engine

import (
	"fmt"
	"io"
)

// PrintReport writes the sectioned text report for a finished run.
func PrintReport(w io.Writer, result *Result) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Symbol:                %s\n", result.Symbol)
	fmt.Fprintf(w, "Strategy:              %s\n", result.Strategy)

	report := result.Report
	if report == nil {
		fmt.Fprintln(w, "No bars processed; no metrics available.")
		fmt.Fprintln(w, "===========================")
		return
	}

	fmt.Fprintf(w, "Period:                %s ~ %s\n", report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Trading Days:          %d\n", report.TradingDays)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Final Value:           %s\n", report.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "Total Return:          %s%%\n", report.TotalReturn.StringFixed(2))
	fmt.Fprintf(w, "Annual Return:         %s%%\n", report.AnnualReturn.StringFixed(2))

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "Volatility:            %s%%\n", report.Volatility.StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", report.SharpeRatio.StringFixed(2))
	fmt.Fprintf(w, "Sortino Ratio:         %s\n", report.SortinoRatio.StringFixed(2))
	fmt.Fprintf(w, "Calmar Ratio:          %s\n", report.CalmarRatio.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown:          %s%%\n", report.MaxDrawdown.StringFixed(2))
	if !report.DrawdownPeak.IsZero() {
		fmt.Fprintf(w, "Drawdown Period:       %s ~ %s\n", report.DrawdownPeak.Format("2006-01-02"), report.DrawdownTrough.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "VaR 95%%:               %s%%\n", report.VaR95.StringFixed(2))
	fmt.Fprintf(w, "Max Underwater Days:   %d\n", report.MaxUnderwaterDays)

	if monthly := MonthlyReturns(result.Snapshots); len(monthly) > 0 {
		fmt.Fprintln(w, "\n-- Monthly Returns --")
		for _, m := range monthly {
			fmt.Fprintf(w, "%d-%02d:               %s%%\n", m.Year, int(m.Month), m.Return.StringFixed(2))
		}
	}

	fmt.Fprintln(w, "\n-- Trades --")
	fmt.Fprintf(w, "Total Trades:          %d\n", report.TotalTrades)
	fmt.Fprintf(w, "Win Rate:              %s%% (%d/%d)\n", report.WinRate.StringFixed(2), report.WinningTrades, report.TotalTrades)
	fmt.Fprintf(w, "Profit/Loss Ratio:     %s\n", report.ProfitLossRatio.StringFixed(2))
	fmt.Fprintf(w, "Best Trade:            %s%%\n", report.BestTrade.StringFixed(2))
	fmt.Fprintf(w, "Worst Trade:           %s%%\n", report.WorstTrade.StringFixed(2))
	fmt.Fprintf(w, "Avg Trade Return:      %s%%\n", report.AvgTradeReturn.StringFixed(2))

	fmt.Fprintln(w, "===========================")
}
