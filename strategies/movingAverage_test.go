package strategies

import (
	"testing"

	"quantsim/types"
)

func TestMovingAverageSignals(t *testing.T) {
	// With a 2/3 split the short average crosses above the long at bar 4 and
	// back below at bar 7.
	candles := testCandles(10, 9, 8, 9, 10, 11, 10, 9, 8, 7)
	s := NewMovingAverage(2, 3)

	signals := s.Signals(candles)
	checkAlternation(t, candles, signals)

	wantBuy, wantSell := 4, 7
	for i, sig := range signals {
		switch i {
		case wantBuy:
			if sig != types.SignalBuy {
				t.Errorf("bar %d = %v, want BUY", i, sig)
			}
		case wantSell:
			if sig != types.SignalSell {
				t.Errorf("bar %d = %v, want SELL", i, sig)
			}
		default:
			if sig != types.SignalHold {
				t.Errorf("bar %d = %v, want HOLD", i, sig)
			}
		}
	}
}

func TestMovingAverageEntersOnFirstValidBar(t *testing.T) {
	// Short average already above long once both windows fill; the
	// state-based rule enters without waiting for a crossover.
	candles := testCandles(10, 11, 12, 13, 14)
	signals := NewMovingAverage(2, 3).Signals(candles)

	if signals[2] != types.SignalBuy {
		t.Errorf("bar 2 = %v, want BUY on the first bar both averages exist", signals[2])
	}
}

func TestMovingAverageName(t *testing.T) {
	if got := NewMovingAverage(20, 50).Name(); got != "Moving Average (20/50)" {
		t.Errorf("Name() = %q", got)
	}
}
