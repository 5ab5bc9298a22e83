package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quantsim/types"
)

var seriesStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// dayCandles builds a daily series where open/high/low/close all sit on the
// given closes, one bar per trading day.
func dayCandles(closes ...float64) []types.Candle {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		candles[i] = types.Candle{
			AssetId:   1,
			Symbol:    "AAPL",
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.NewFromInt(1000),
			Interval:  types.Day,
			Timestamp: seriesStart.AddDate(0, 0, i),
		}
	}
	return candles
}

// fixedStrategy replays a canned signal series.
type fixedStrategy struct {
	signals []types.Signal
}

func (s fixedStrategy) Name() string { return "fixed" }

func (s fixedStrategy) Signals(candles []types.Candle) []types.Signal {
	return s.signals
}

func holdStrategy(n int) fixedStrategy {
	return fixedStrategy{signals: make([]types.Signal, n)}
}

func TestEngineBuyThenSell(t *testing.T) {
	candles := dayCandles(100, 105, 110)
	signals := []types.Signal{types.SignalBuy, types.SignalHold, types.SignalSell}

	eng, err := NewEngine(fixedStrategy{signals}, testConfig(10000))
	if err != nil {
		t.Fatal(err)
	}
	result, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}

	// 95% of 10000 at price 100 buys 95 whole shares; selling them at 110
	// leaves 500 + 10450 in cash.
	if !result.FinalValue.Equal(decimal.NewFromInt(10950)) {
		t.Errorf("final value = %v, want 10950", result.FinalValue)
	}
	if got := result.Report.TotalReturn.InexactFloat64(); math.Abs(got-9.5) > 1e-9 {
		t.Errorf("total return = %v, want 9.5", got)
	}
	if len(result.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(result.Trades))
	}
	if len(result.Snapshots) != len(candles) {
		t.Errorf("snapshots = %d, want %d", len(result.Snapshots), len(candles))
	}
	if len(result.Closed) != 1 || !result.Closed[0].IsWin {
		t.Errorf("closed = %+v, want one winning round trip", result.Closed)
	}
}

func TestEngineFinalLiquidation(t *testing.T) {
	candles := dayCandles(100, 104, 108)
	signals := []types.Signal{types.SignalBuy, types.SignalHold, types.SignalHold}

	eng, _ := NewEngine(fixedStrategy{signals}, testConfig(10000))
	result, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Trades) != 2 {
		t.Fatalf("trades = %d, want buy plus forced liquidation", len(result.Trades))
	}
	last := result.Trades[1]
	if last.Action != types.ActionSell || last.Reason != "final" {
		t.Errorf("liquidation trade = %+v, want SELL with reason final", last)
	}
	if !last.Price.Equal(decimal.NewFromInt(108)) {
		t.Errorf("liquidation price = %v, want last close 108", last.Price)
	}
	// The liquidation happens after the last bar; it must not add a snapshot.
	if len(result.Snapshots) != len(candles) {
		t.Errorf("snapshots = %d, want %d", len(result.Snapshots), len(candles))
	}
	// 95 shares bought at 100, sold at 108: 500 + 10260.
	if !result.FinalValue.Equal(decimal.NewFromInt(10760)) {
		t.Errorf("final value = %v, want 10760", result.FinalValue)
	}
}

func TestEngineNeverBuys(t *testing.T) {
	candles := dayCandles(100, 90, 80, 70)
	eng, _ := NewEngine(holdStrategy(len(candles)), testConfig(10000))
	result, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Trades) != 0 {
		t.Errorf("trades = %d, want 0", len(result.Trades))
	}
	if !result.FinalValue.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("final value = %v, want initial capital", result.FinalValue)
	}
	if !result.Report.TotalReturn.IsZero() {
		t.Errorf("total return = %v, want 0", result.Report.TotalReturn)
	}
	if !result.Report.MaxDrawdown.IsZero() {
		t.Errorf("max drawdown = %v, want 0", result.Report.MaxDrawdown)
	}
}

func TestEngineSellSignalWhileFlatIsIgnored(t *testing.T) {
	candles := dayCandles(100, 100, 100)
	signals := []types.Signal{types.SignalSell, types.SignalSell, types.SignalSell}

	eng, _ := NewEngine(fixedStrategy{signals}, testConfig(10000))
	result, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Trades) != 0 {
		t.Errorf("trades = %d, want 0", len(result.Trades))
	}
}

func TestEngineEmptyInput(t *testing.T) {
	eng, _ := NewEngine(holdStrategy(0), testConfig(10000))
	result, err := eng.Run("AAPL", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Report != nil {
		t.Error("report should be nil for an empty series")
	}
	if !result.FinalValue.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("final value = %v, want initial capital", result.FinalValue)
	}
}

func TestEngineSignalLengthMismatch(t *testing.T) {
	eng, _ := NewEngine(holdStrategy(0), testConfig(10000))
	_, err := eng.RunSignals("AAPL", dayCandles(100, 101), []types.Signal{types.SignalBuy})
	if !errors.Is(err, ErrSignalLengthMismatch) {
		t.Errorf("err = %v, want ErrSignalLengthMismatch", err)
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(0)
	if _, err := NewEngine(holdStrategy(0), cfg); !errors.Is(err, ErrNonPositiveCapital) {
		t.Errorf("err = %v, want ErrNonPositiveCapital", err)
	}
	if _, err := NewEngine(nil, testConfig(1000)); !errors.Is(err, ErrMissingStrategy) {
		t.Errorf("err = %v, want ErrMissingStrategy", err)
	}
}

func TestEngineDeterministic(t *testing.T) {
	candles := dayCandles(100, 103, 99, 108, 95, 112, 101)
	signals := []types.Signal{
		types.SignalBuy, types.SignalHold, types.SignalSell,
		types.SignalBuy, types.SignalHold, types.SignalSell,
		types.SignalHold,
	}
	cfg := testConfig(10000)
	cfg.CommissionRate = decimal.NewFromFloat(0.001)
	cfg.SlippageRate = decimal.NewFromFloat(0.0005)

	eng, err := NewEngine(fixedStrategy{signals}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	first, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}

	if !first.FinalValue.Equal(second.FinalValue) {
		t.Errorf("runs diverged: %v vs %v", first.FinalValue, second.FinalValue)
	}
	if len(first.Trades) != len(second.Trades) {
		t.Fatalf("trade counts diverged: %d vs %d", len(first.Trades), len(second.Trades))
	}
	for i := range first.Trades {
		if !first.Trades[i].Price.Equal(second.Trades[i].Price) {
			t.Errorf("trade %d price diverged: %v vs %v", i, first.Trades[i].Price, second.Trades[i].Price)
		}
	}
}

func TestEngineFractionalShares(t *testing.T) {
	cfg := testConfig(1000)
	cfg.FractionalShares = true
	candles := dayCandles(250, 275)
	signals := []types.Signal{types.SignalBuy, types.SignalSell}

	eng, _ := NewEngine(fixedStrategy{signals}, cfg)
	result, err := eng.Run("AAPL", candles)
	if err != nil {
		t.Fatal(err)
	}
	// 950/250 = 3.8 shares bought, not floored; value grows by 10% on the
	// invested fraction: 50 + 950*1.1 = 1095.
	if !result.FinalValue.Equal(decimal.NewFromInt(1095)) {
		t.Errorf("final value = %v, want 1095", result.FinalValue)
	}
}
