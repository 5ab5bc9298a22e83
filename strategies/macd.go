package strategies

import (
	"fmt"

	"quantsim/types"
)

// MACD signals on crossings of the MACD line against its signal line: buy on
// an upward cross while flat, sell on a downward cross while long.
type MACD struct {
	fast   int
	slow   int
	signal int
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

func (s *MACD) Name() string {
	return fmt.Sprintf("MACD (%d/%d/%d)", s.fast, s.slow, s.signal)
}

func (s *MACD) Signals(candles []types.Candle) []types.Signal {
	closes := closePrices(candles)
	signals := make([]types.Signal, len(candles))
	if len(closes) < 2 {
		return signals
	}

	emaFast := ema(closes, s.fast)
	emaSlow := ema(closes, s.slow)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := ema(macd, s.signal)

	long := false
	for i := 1; i < len(closes); i++ {
		crossedUp := macd[i-1] <= signalLine[i-1] && macd[i] > signalLine[i]
		crossedDown := macd[i-1] >= signalLine[i-1] && macd[i] < signalLine[i]

		switch {
		case !long && crossedUp:
			signals[i] = types.SignalBuy
			long = true
		case long && crossedDown:
			signals[i] = types.SignalSell
			long = false
		}
	}
	return signals
}
