package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quantsim/types"
)

func ledgerTrade(symbol string, action types.TradeAction, price float64, ts time.Time) types.Trade {
	return types.Trade{
		Timestamp: ts,
		Symbol:    symbol,
		Action:    action,
		Price:     decimal.NewFromFloat(price),
		Quantity:  decimal.NewFromInt(10),
	}
}

func TestPairTrades(t *testing.T) {
	t0 := barTime

	t.Run("round trip", func(t *testing.T) {
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionBuy, 100, t0),
			ledgerTrade("AAPL", types.ActionSell, 110, t0.Add(24*time.Hour)),
		})
		if len(closed) != 1 {
			t.Fatalf("closed = %d, want 1", len(closed))
		}
		ct := closed[0]
		if !ct.ReturnPct.Equal(decimal.NewFromInt(10)) {
			t.Errorf("return = %v, want 10", ct.ReturnPct)
		}
		if !ct.PnL.Equal(decimal.NewFromInt(100)) {
			t.Errorf("pnl = %v, want 100", ct.PnL)
		}
		if !ct.IsWin {
			t.Error("expected a winning trade")
		}
		if ct.ExitAction != types.ActionSell {
			t.Errorf("exit action = %v", ct.ExitAction)
		}
	})

	t.Run("fifo matching across symbols", func(t *testing.T) {
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionBuy, 100, t0),
			ledgerTrade("MSFT", types.ActionBuy, 200, t0.Add(time.Hour)),
			ledgerTrade("AAPL", types.ActionSell, 105, t0.Add(2*time.Hour)),
			ledgerTrade("MSFT", types.ActionSell, 190, t0.Add(3*time.Hour)),
		})
		if len(closed) != 2 {
			t.Fatalf("closed = %d, want 2", len(closed))
		}
		if closed[0].Symbol != "AAPL" || !closed[0].IsWin {
			t.Errorf("first pair = %+v", closed[0])
		}
		if closed[1].Symbol != "MSFT" || closed[1].IsWin {
			t.Errorf("second pair = %+v", closed[1])
		}
	})

	t.Run("stop loss never counts as a win", func(t *testing.T) {
		// Exit above entry but flagged STOP_LOSS; the return is forced
		// negative.
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionBuy, 100, t0),
			ledgerTrade("AAPL", types.ActionStopLoss, 102, t0.Add(time.Hour)),
		})
		if len(closed) != 1 {
			t.Fatalf("closed = %d, want 1", len(closed))
		}
		ct := closed[0]
		if !ct.ReturnPct.Equal(decimal.NewFromInt(-2)) {
			t.Errorf("return = %v, want -2", ct.ReturnPct)
		}
		if ct.IsWin {
			t.Error("stop loss exit must not be a win")
		}
	})

	t.Run("take profit counts normally", func(t *testing.T) {
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionBuy, 100, t0),
			ledgerTrade("AAPL", types.ActionTakeProfit, 112, t0.Add(time.Hour)),
		})
		if len(closed) != 1 || !closed[0].IsWin {
			t.Fatalf("closed = %+v, want one win", closed)
		}
		if !closed[0].ReturnPct.Equal(decimal.NewFromInt(12)) {
			t.Errorf("return = %v, want 12", closed[0].ReturnPct)
		}
	})

	t.Run("unmatched exit is skipped", func(t *testing.T) {
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionSell, 100, t0),
		})
		if len(closed) != 0 {
			t.Errorf("closed = %d, want 0", len(closed))
		}
	})

	t.Run("open entry stays unmatched", func(t *testing.T) {
		closed := pairTrades([]types.Trade{
			ledgerTrade("AAPL", types.ActionBuy, 100, t0),
		})
		if len(closed) != 0 {
			t.Errorf("closed = %d, want 0", len(closed))
		}
	})
}
