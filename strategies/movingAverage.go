package strategies

import (
	"fmt"

	"quantsim/types"
)

// MovingAverage buys when flat and the short average sits above the long
// one, and sells when long and the short average drops below. State-based
// rather than strict-crossover, so a run starting already above the long
// average enters on the first valid bar.
type MovingAverage struct {
	short int
	long  int
}

func NewMovingAverage(short, long int) *MovingAverage {
	return &MovingAverage{short: short, long: long}
}

func (s *MovingAverage) Name() string {
	return fmt.Sprintf("Moving Average (%d/%d)", s.short, s.long)
}

func (s *MovingAverage) Signals(candles []types.Candle) []types.Signal {
	closes := closePrices(candles)
	maShort, okShort := sma(closes, s.short)
	maLong, okLong := sma(closes, s.long)

	signals := make([]types.Signal, len(candles))
	long := false
	for i := range candles {
		if !okShort[i] || !okLong[i] {
			continue
		}
		switch {
		case !long && maShort[i] > maLong[i]:
			signals[i] = types.SignalBuy
			long = true
		case long && maShort[i] < maLong[i]:
			signals[i] = types.SignalSell
			long = false
		}
	}
	return signals
}
