package engine

import (
	"github.com/shopspring/decimal"

	"quantsim/types"
)

var supportBreachFactor = decimal.RequireFromString("0.98")

// exitDecision is a forced exit produced by the risk overlay. At most one is
// produced per bar and it pre-empts any same-bar strategy SELL.
type exitDecision struct {
	action types.TradeAction
	reason string
	price  decimal.Decimal
}

// riskOverlay evaluates, once per bar and before the strategy signal, whether
// the open position must be closed. Checks run in fixed priority order:
// percentage stop loss, take profit, support break. Support levels are
// precomputed over the whole series so Evaluate stays O(1) per bar.
type riskOverlay struct {
	stopLossPct   decimal.Decimal
	takeProfitPct decimal.Decimal
	supportLevels []decimal.Decimal
}

func newRiskOverlay(cfg *SimulationConfig, candles []types.Candle) *riskOverlay {
	r := &riskOverlay{
		stopLossPct:   cfg.StopLossPct,
		takeProfitPct: cfg.TakeProfitPct,
	}
	if cfg.SupportLookback > 0 {
		r.supportLevels = computeSupportLevels(candles, cfg.SupportLookback)
	}
	return r
}

func (r *riskOverlay) Evaluate(i int, bar types.Candle, pos *types.Position) *exitDecision {
	if pos == nil {
		return nil
	}
	close := bar.Close
	entry := pos.AvgEntryPrice
	hundred := decimal.NewFromInt(100)

	if r.stopLossPct.IsPositive() && entry.IsPositive() {
		lossPct := entry.Sub(close).Div(entry).Mul(hundred)
		if lossPct.GreaterThanOrEqual(r.stopLossPct) {
			return &exitDecision{
				action: types.ActionStopLoss,
				reason: "Stop Loss (" + lossPct.StringFixed(2) + "%)",
				price:  close,
			}
		}
	}

	if r.takeProfitPct.IsPositive() && entry.IsPositive() {
		gainPct := close.Sub(entry).Div(entry).Mul(hundred)
		if gainPct.GreaterThanOrEqual(r.takeProfitPct) {
			return &exitDecision{
				action: types.ActionTakeProfit,
				reason: "Take Profit (" + gainPct.StringFixed(2) + "%)",
				price:  close,
			}
		}
	}

	if r.supportLevels != nil && i < len(r.supportLevels) {
		level := r.supportLevels[i]
		if level.IsPositive() && close.LessThan(level.Mul(supportBreachFactor)) {
			return &exitDecision{
				action: types.ActionStopLoss,
				reason: "Support Break (" + level.StringFixed(2) + ")",
				price:  close,
			}
		}
	}

	return nil
}

// computeSupportLevels returns one support level per bar, derived from the
// trailing lookback window of lows. A pivot low is a low that is <= both of
// its two neighbors on each side; the pivot closest to the bar's close wins,
// ties going to the earliest. A window with no pivot falls back to its minimum
// low. Bars before the window fills get zero, meaning "unset".
func computeSupportLevels(candles []types.Candle, lookback int) []decimal.Decimal {
	levels := make([]decimal.Decimal, len(candles))
	for i := range candles {
		if i < lookback {
			levels[i] = decimal.Zero
			continue
		}

		window := candles[i-lookback : i]
		lows := make([]decimal.Decimal, len(window))
		for j, c := range window {
			lows[j] = c.Low
		}

		var pivots []decimal.Decimal
		for j := 2; j < len(lows)-2; j++ {
			if lows[j].LessThanOrEqual(lows[j-1]) && lows[j].LessThanOrEqual(lows[j-2]) &&
				lows[j].LessThanOrEqual(lows[j+1]) && lows[j].LessThanOrEqual(lows[j+2]) {
				pivots = append(pivots, lows[j])
			}
		}

		if len(pivots) == 0 {
			levels[i] = minDecimal(lows)
			continue
		}

		close := candles[i].Close
		best := pivots[0]
		bestDist := close.Sub(best).Abs()
		for _, p := range pivots[1:] {
			dist := close.Sub(p).Abs()
			if dist.LessThan(bestDist) {
				best = p
				bestDist = dist
			}
		}
		levels[i] = best
	}
	return levels
}

func minDecimal(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}
