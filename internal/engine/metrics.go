package engine

import (
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"quantsim/types"
)

const tradingDaysPerYear = 252

// Report is the audited metrics set derived from the snapshot series and the
// paired trades. Every metric defines an explicit fallback for degenerate
// inputs (flat returns, zero trades, zero losses) instead of producing NaN.
type Report struct {
	// Meta / period info
	StartDate   time.Time
	EndDate     time.Time
	TradingDays int

	// Absolute performance
	FinalValue   decimal.Decimal
	TotalReturn  decimal.Decimal
	AnnualReturn decimal.Decimal

	// Risk-adjusted metrics
	Volatility   decimal.Decimal
	SharpeRatio  decimal.Decimal
	SortinoRatio decimal.Decimal
	CalmarRatio  decimal.Decimal

	// Drawdown & tail risk
	MaxDrawdown       decimal.Decimal
	DrawdownPeak      time.Time
	DrawdownTrough    time.Time
	VaR95             decimal.Decimal
	MaxUnderwaterDays int

	// Trade-level distribution metrics
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	WinRate         decimal.Decimal
	ProfitLossRatio decimal.Decimal
	BestTrade       decimal.Decimal
	WorstTrade      decimal.Decimal
	AvgTradeReturn  decimal.Decimal
	TotalProfit     decimal.Decimal
	TotalLoss       decimal.Decimal
}

func generateReport(snapshots []types.PortfolioSnapshot, closed []types.ClosedTrade, cfg *SimulationConfig) *Report {
	if len(snapshots) == 0 {
		return nil
	}

	values := snapshotValues(snapshots)
	returns := pctChange(values)
	initial := cfg.InitialCapital.InexactFloat64()
	riskFree := cfg.RiskFreeRate.InexactFloat64()

	report := &Report{
		StartDate:   snapshots[0].Time,
		EndDate:     snapshots[len(snapshots)-1].Time,
		TradingDays: len(snapshots),
		FinalValue:  snapshots[len(snapshots)-1].TotalValue,
	}

	// Done must fire after the report fields are written, not when the calc
	// function returns, or Wait can unblock mid-assignment.
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		report.TotalReturn, report.AnnualReturn = calcReturnMetrics(values, initial)
	}()
	go func() {
		defer wg.Done()
		report.Volatility, report.SharpeRatio, report.SortinoRatio = calcRatioMetrics(returns, riskFree)
	}()
	go func() {
		defer wg.Done()
		report.MaxDrawdown, report.DrawdownPeak, report.DrawdownTrough, report.MaxUnderwaterDays = calcDrawdownMetrics(snapshots)
	}()
	go func() {
		defer wg.Done()
		report.CalmarRatio, report.VaR95 = calcTailMetrics(values, returns)
	}()
	go func() {
		defer wg.Done()
		calcTradeMetrics(closed, report)
	}()
	wg.Wait()

	return report
}

// calcReturnMetrics returns total and annualized return in percent. Runs of a
// year or less are too short to annualize meaningfully, so the annualized
// figure falls back to the total return there. Longer runs compound at 252
// trading days per year.
func calcReturnMetrics(values []float64, initial float64) (decimal.Decimal, decimal.Decimal) {
	if len(values) == 0 || initial <= 0 {
		return decimal.Zero, decimal.Zero
	}

	final := values[len(values)-1]
	totalReturn := (final/initial - 1) * 100

	annualReturn := totalReturn
	if len(values) > tradingDaysPerYear && final > 0 {
		years := float64(len(values)) / tradingDaysPerYear
		annualReturn = (math.Pow(final/initial, 1/years) - 1) * 100
	}
	return fromFloat(totalReturn), fromFloat(annualReturn)
}

// calcRatioMetrics computes annualized volatility, Sharpe and Sortino.
// riskFree is the annual risk-free rate; it is spread over trading days before
// entering the Sharpe excess returns.
func calcRatioMetrics(returns []float64, riskFree float64) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if len(returns) < 2 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}

	sqrtDays := math.Sqrt(tradingDaysPerYear)
	volatility := stdDev(returns) * sqrtDays * 100

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree/tradingDaysPerYear
	}
	sharpe := 0.0
	if sd := stdDev(excess); sd > 0 {
		sharpe = mean(excess) / sd * sqrtDays
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	sortino := 0.0
	if sd := stdDev(downside); sd > 0 {
		sortino = mean(returns) * tradingDaysPerYear / (sd * sqrtDays)
	}

	return fromFloat(volatility), fromFloat(sharpe), fromFloat(sortino)
}

// calcDrawdownMetrics walks the running maximum of the value series. The peak
// and trough timestamps bracket the deepest decline; underwater days is the
// longest run of bars strictly below the running peak.
func calcDrawdownMetrics(snapshots []types.PortfolioSnapshot) (decimal.Decimal, time.Time, time.Time, int) {
	if len(snapshots) == 0 {
		return decimal.Zero, time.Time{}, time.Time{}, 0
	}

	values := snapshotValues(snapshots)

	peak := values[0]
	peakTime := snapshots[0].Time
	maxDD := 0.0
	var ddPeak, ddTrough time.Time

	maxUnderwater := 0
	currentUnderwater := 0

	for i, v := range values {
		if v > peak {
			peak = v
			peakTime = snapshots[i].Time
		}

		dd := 0.0
		if peak > 0 {
			dd = (v - peak) / peak
		}
		if dd < maxDD {
			maxDD = dd
			ddPeak = peakTime
			ddTrough = snapshots[i].Time
		}

		if dd < 0 {
			currentUnderwater++
			if currentUnderwater > maxUnderwater {
				maxUnderwater = currentUnderwater
			}
		} else {
			currentUnderwater = 0
		}
	}

	return fromFloat(maxDD * 100), ddPeak, ddTrough, maxUnderwater
}

// calcTailMetrics computes the Calmar ratio and the 95% value-at-risk of the
// daily returns. A zero drawdown makes Calmar 0, not infinite.
func calcTailMetrics(values, returns []float64) (decimal.Decimal, decimal.Decimal) {
	if len(returns) == 0 {
		return decimal.Zero, decimal.Zero
	}

	peak := 0.0
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < maxDD {
				maxDD = dd
			}
		}
	}

	calmar := 0.0
	if maxDD < 0 {
		calmar = mean(returns) * tradingDaysPerYear / math.Abs(maxDD)
	}

	var95 := percentile(returns, 5) * 100
	return fromFloat(calmar), fromFloat(var95)
}

// calcTradeMetrics fills the trade-quality section of the report from the
// paired round trips. With either profit or loss side empty the profit/loss
// ratio reports 0.
func calcTradeMetrics(closed []types.ClosedTrade, report *Report) {
	report.TotalTrades = len(closed)
	if len(closed) == 0 {
		return
	}

	var tradeReturns []float64
	var profits, losses []float64
	totalProfit := decimal.Zero
	totalLoss := decimal.Zero

	for _, ct := range closed {
		r := ct.ReturnPct.InexactFloat64()
		tradeReturns = append(tradeReturns, r)
		switch {
		case r > 0:
			profits = append(profits, r)
			totalProfit = totalProfit.Add(ct.ReturnPct)
		case r < 0:
			losses = append(losses, r)
			totalLoss = totalLoss.Add(ct.ReturnPct)
		}
		if ct.IsWin {
			report.WinningTrades++
		}
	}
	report.LosingTrades = report.TotalTrades - report.WinningTrades
	report.WinRate = fromFloat(float64(report.WinningTrades) / float64(report.TotalTrades) * 100)

	if len(profits) > 0 && len(losses) > 0 {
		report.ProfitLossRatio = fromFloat(mean(profits) / math.Abs(mean(losses)))
	} else {
		report.ProfitLossRatio = decimal.Zero
	}

	best, worst := tradeReturns[0], tradeReturns[0]
	for _, r := range tradeReturns[1:] {
		if r > best {
			best = r
		}
		if r < worst {
			worst = r
		}
	}
	report.BestTrade = fromFloat(best)
	report.WorstTrade = fromFloat(worst)
	report.AvgTradeReturn = fromFloat(mean(tradeReturns))
	report.TotalProfit = totalProfit
	report.TotalLoss = totalLoss
}
