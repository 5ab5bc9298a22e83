package engine

import (
	"github.com/shopspring/decimal"

	"quantsim/types"
)

// pairTrades reconstructs closed round trips from the raw ledger via FIFO
// matching: per symbol, each exit dequeues the oldest unmatched BUY. The
// engine at hand keeps the per-symbol queue at depth <= 1, but the pairing
// does not rely on that. A STOP_LOSS exit with a nominally positive return
// (slippage/commission timing can cause one) is forced negative.
func pairTrades(trades []types.Trade) []types.ClosedTrade {
	hundred := decimal.NewFromInt(100)
	open := make(map[string][]types.Trade)
	var closed []types.ClosedTrade

	for i := range trades {
		t := trades[i]
		switch {
		case t.Action == types.ActionBuy:
			open[t.Symbol] = append(open[t.Symbol], t)

		case t.Action.IsExit():
			queue := open[t.Symbol]
			if len(queue) == 0 {
				continue
			}
			entry := queue[0]
			open[t.Symbol] = queue[1:]

			returnPct := decimal.Zero
			if entry.Price.IsPositive() {
				returnPct = t.Price.Div(entry.Price).Sub(one).Mul(hundred)
			}
			if t.Action == types.ActionStopLoss && returnPct.IsPositive() {
				returnPct = returnPct.Abs().Neg()
			}

			closed = append(closed, types.ClosedTrade{
				Symbol:     t.Symbol,
				EntryTime:  entry.Timestamp,
				ExitTime:   t.Timestamp,
				EntryPrice: entry.Price,
				ExitPrice:  t.Price,
				Quantity:   t.Quantity,
				PnL:        t.Price.Sub(entry.Price).Mul(t.Quantity),
				ReturnPct:  returnPct,
				ExitAction: t.Action,
				IsWin:      returnPct.IsPositive(),
			})
		}
	}
	return closed
}
