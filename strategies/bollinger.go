package strategies

import (
	"fmt"

	"quantsim/types"
)

// Bollinger is a mean-reversion band strategy: buy when flat and the close
// touches or breaks the lower band, sell when long and it reaches the upper.
type Bollinger struct {
	period int
	stdDev float64
}

func NewBollinger(period int, stdDev float64) *Bollinger {
	return &Bollinger{period: period, stdDev: stdDev}
}

func (s *Bollinger) Name() string {
	return fmt.Sprintf("Bollinger Bands (%d, %.1f)", s.period, s.stdDev)
}

func (s *Bollinger) Signals(candles []types.Candle) []types.Signal {
	closes := closePrices(candles)
	mid, okMid := sma(closes, s.period)
	sd, okSd := rollingStd(closes, s.period)

	signals := make([]types.Signal, len(candles))
	long := false
	for i := range closes {
		if !okMid[i] || !okSd[i] {
			continue
		}
		upper := mid[i] + sd[i]*s.stdDev
		lower := mid[i] - sd[i]*s.stdDev

		switch {
		case !long && closes[i] <= lower:
			signals[i] = types.SignalBuy
			long = true
		case long && closes[i] >= upper:
			signals[i] = types.SignalSell
			long = false
		}
	}
	return signals
}
