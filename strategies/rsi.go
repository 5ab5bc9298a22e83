package strategies

import (
	"fmt"

	"quantsim/types"
)

// RSI buys when flat and the index falls to the oversold threshold, sells
// when long and it reaches the overbought threshold. Gains and losses use a
// plain rolling mean, not Wilder smoothing.
type RSI struct {
	period     int
	oversold   float64
	overbought float64
}

func NewRSI(period int, oversold, overbought float64) *RSI {
	return &RSI{period: period, oversold: oversold, overbought: overbought}
}

func (s *RSI) Name() string {
	return fmt.Sprintf("RSI (%d)", s.period)
}

func (s *RSI) Signals(candles []types.Candle) []types.Signal {
	closes := closePrices(candles)
	signals := make([]types.Signal, len(candles))
	if len(closes) < 2 {
		return signals
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	// deltas start at index 1, so the rolling means run over gains[1:]
	avgGain, okGain := sma(gains[1:], s.period)
	avgLoss, okLoss := sma(losses[1:], s.period)

	long := false
	for i := 1; i < len(closes); i++ {
		j := i - 1
		if !okGain[j] || !okLoss[j] {
			continue
		}
		var rsi float64
		if avgLoss[j] == 0 {
			rsi = 100
		} else {
			rs := avgGain[j] / avgLoss[j]
			rsi = 100 - 100/(1+rs)
		}

		switch {
		case !long && rsi <= s.oversold:
			signals[i] = types.SignalBuy
			long = true
		case long && rsi >= s.overbought:
			signals[i] = types.SignalSell
			long = false
		}
	}
	return signals
}
