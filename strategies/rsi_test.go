package strategies

import (
	"testing"

	"quantsim/types"
)

func TestRSISignals(t *testing.T) {
	// Two straight losses push the 2-period RSI to 0; two straight gains
	// with no losses push it to 100.
	candles := testCandles(100, 90, 80, 81, 82, 95)
	s := NewRSI(2, 30, 70)

	signals := s.Signals(candles)
	checkAlternation(t, candles, signals)

	if signals[2] != types.SignalBuy {
		t.Errorf("bar 2 = %v, want BUY at oversold", signals[2])
	}
	if signals[4] != types.SignalSell {
		t.Errorf("bar 4 = %v, want SELL at overbought", signals[4])
	}
	if signals[5] != types.SignalHold {
		t.Errorf("bar 5 = %v, want HOLD while flat and overbought", signals[5])
	}
}

func TestRSINoRebuyWhileLong(t *testing.T) {
	// Stays oversold across consecutive bars; only the first can buy.
	candles := testCandles(100, 90, 80, 70, 60, 50)
	signals := NewRSI(2, 30, 70).Signals(candles)
	checkAlternation(t, candles, signals)

	buys := 0
	for _, sig := range signals {
		if sig == types.SignalBuy {
			buys++
		}
	}
	if buys != 1 {
		t.Errorf("buys = %d, want 1", buys)
	}
}

func TestRSITooShortSeries(t *testing.T) {
	signals := NewRSI(14, 30, 70).Signals(testCandles(100))
	if len(signals) != 1 || signals[0] != types.SignalHold {
		t.Errorf("signals = %v, want a single HOLD", signals)
	}
}
