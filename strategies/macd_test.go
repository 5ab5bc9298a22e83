package strategies

import (
	"testing"

	"quantsim/types"
)

func TestMACDSignals(t *testing.T) {
	// Flat, then a rally, then a slide: the MACD line crosses its signal
	// line upward early in the rally and downward in the slide.
	closes := make([]float64, 0, 40)
	for i := 0; i < 15; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100+float64(i)*2)
	}
	for i := 1; i <= 15; i++ {
		closes = append(closes, 120-float64(i)*3)
	}
	candles := testCandles(closes...)

	signals := NewMACD(12, 26, 9).Signals(candles)
	checkAlternation(t, candles, signals)

	firstBuy, firstSell := -1, -1
	for i, sig := range signals {
		if sig == types.SignalBuy && firstBuy == -1 {
			firstBuy = i
		}
		if sig == types.SignalSell && firstSell == -1 {
			firstSell = i
		}
	}
	if firstBuy == -1 {
		t.Fatal("expected a BUY during the rally")
	}
	if firstBuy < 15 || firstBuy >= 25 {
		t.Errorf("first BUY at bar %d, want within the rally", firstBuy)
	}
	if firstSell == -1 {
		t.Fatal("expected a SELL during the slide")
	}
	if firstSell <= firstBuy {
		t.Errorf("first SELL at bar %d before first BUY at %d", firstSell, firstBuy)
	}
}

func TestMACDFlatSeriesHolds(t *testing.T) {
	candles := testCandles(100, 100, 100, 100, 100, 100)
	signals := NewMACD(12, 26, 9).Signals(candles)
	for i, sig := range signals {
		if sig != types.SignalHold {
			t.Errorf("bar %d = %v, want HOLD on a flat series", i, sig)
		}
	}
}

func TestMACDTooShortSeries(t *testing.T) {
	signals := NewMACD(12, 26, 9).Signals(testCandles(100))
	if len(signals) != 1 || signals[0] != types.SignalHold {
		t.Errorf("signals = %v", signals)
	}
}
