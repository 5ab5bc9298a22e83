package engine

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"quantsim/types"
)

// RollingMetrics are windowed diagnostics over the equity curve, one value
// per bar from the point the window is full.
type RollingMetrics struct {
	Times      []time.Time
	Sharpe     []decimal.Decimal
	Volatility []decimal.Decimal
	Drawdown   []decimal.Decimal
}

// calcRollingMetrics computes rolling Sharpe, rolling annualized volatility
// and rolling drawdown against the in-window maximum. Returns nil when the
// series is shorter than the window.
func calcRollingMetrics(snapshots []types.PortfolioSnapshot, window int) *RollingMetrics {
	if window <= 0 || len(snapshots) < window {
		return nil
	}

	values := snapshotValues(snapshots)
	returns := pctChange(values)
	sqrtDays := math.Sqrt(tradingDaysPerYear)

	rm := &RollingMetrics{}
	for i := window; i <= len(returns); i++ {
		slice := returns[i-window : i]

		sharpe := 0.0
		if sd := stdDev(slice); sd > 0 {
			sharpe = mean(slice) / sd * sqrtDays
		}

		// returns[i-1] belongs to the bar at snapshots[i]
		rm.Times = append(rm.Times, snapshots[i].Time)
		rm.Sharpe = append(rm.Sharpe, fromFloat(sharpe))
		rm.Volatility = append(rm.Volatility, fromFloat(stdDev(slice)*sqrtDays*100))

		windowMax := values[i+1-window]
		for _, v := range values[i+1-window : i+1] {
			if v > windowMax {
				windowMax = v
			}
		}
		dd := 0.0
		if windowMax > 0 {
			dd = (values[i] - windowMax) / windowMax * 100
		}
		rm.Drawdown = append(rm.Drawdown, fromFloat(dd))
	}
	return rm
}

// MonthlyReturn is the equity-curve return between consecutive month-end
// snapshot values.
type MonthlyReturn struct {
	Year   int
	Month  time.Month
	Return decimal.Decimal
}

// MonthlyReturns derives the month-over-month table from the snapshot
// series; it needs at least two distinct months to report anything.
func MonthlyReturns(snapshots []types.PortfolioSnapshot) []MonthlyReturn {
	if len(snapshots) == 0 {
		return nil
	}

	type monthKey struct {
		year  int
		month time.Month
	}

	lastInMonth := make(map[monthKey]types.PortfolioSnapshot)
	for _, snap := range snapshots {
		y, m, _ := snap.Time.Date()
		key := monthKey{y, m}
		if cur, ok := lastInMonth[key]; !ok || snap.Time.After(cur.Time) {
			lastInMonth[key] = snap
		}
	}

	keys := make([]monthKey, 0, len(lastInMonth))
	for k := range lastInMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	if len(keys) < 2 {
		return nil
	}

	var out []MonthlyReturn
	prev := lastInMonth[keys[0]].TotalValue
	for _, k := range keys[1:] {
		cur := lastInMonth[k].TotalValue
		if !prev.IsPositive() {
			prev = cur
			continue
		}
		out = append(out, MonthlyReturn{
			Year:   k.year,
			Month:  k.month,
			Return: cur.Div(prev).Sub(one).Mul(decimal.NewFromInt(100)),
		})
		prev = cur
	}
	return out
}

// BenchmarkComparison relates the equity curve to a benchmark close series:
// annualized alpha in percent, beta, and return correlation.
type BenchmarkComparison struct {
	Alpha       decimal.Decimal
	Beta        decimal.Decimal
	Correlation decimal.Decimal
}

// CompareBenchmark aligns by index: both series must cover the same bars.
func CompareBenchmark(snapshots []types.PortfolioSnapshot, benchmark []types.Candle) BenchmarkComparison {
	if len(snapshots) < 2 || len(benchmark) < 2 {
		return BenchmarkComparison{}
	}

	portfolioReturns := pctChange(snapshotValues(snapshots))
	closes := make([]float64, len(benchmark))
	for i, c := range benchmark {
		closes[i] = c.Close.InexactFloat64()
	}
	benchReturns := pctChange(closes)

	n := len(portfolioReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < 2 {
		return BenchmarkComparison{}
	}
	portfolioReturns = portfolioReturns[:n]
	benchReturns = benchReturns[:n]

	meanP := mean(portfolioReturns)
	meanB := mean(benchReturns)
	var cov, varB, varP float64
	for i := 0; i < n; i++ {
		cov += (portfolioReturns[i] - meanP) * (benchReturns[i] - meanB)
		varB += (benchReturns[i] - meanB) * (benchReturns[i] - meanB)
		varP += (portfolioReturns[i] - meanP) * (portfolioReturns[i] - meanP)
	}
	cov /= float64(n - 1)
	varB /= float64(n - 1)
	varP /= float64(n - 1)

	beta := 0.0
	alpha := 0.0
	if varB > 0 {
		beta = cov / varB
		alpha = (meanP - beta*meanB) * tradingDaysPerYear * 100
	}
	correlation := 0.0
	if varP > 0 && varB > 0 {
		correlation = cov / math.Sqrt(varP*varB)
	}

	return BenchmarkComparison{
		Alpha:       fromFloat(alpha),
		Beta:        fromFloat(beta),
		Correlation: fromFloat(correlation),
	}
}
