package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeAction string

const (
	ActionBuy        TradeAction = "BUY"
	ActionSell       TradeAction = "SELL"
	ActionStopLoss   TradeAction = "STOP_LOSS"
	ActionTakeProfit TradeAction = "TAKE_PROFIT"
)

// IsExit reports whether the action closes (part of) a position.
func (a TradeAction) IsExit() bool {
	return a == ActionSell || a == ActionStopLoss || a == ActionTakeProfit
}

// Trade is one append-only ledger entry. Price is the execution price after
// slippage; PortfolioValue is the total portfolio value right after the fill,
// marked at the execution price.
type Trade struct {
	Timestamp      time.Time
	Symbol         string
	Action         TradeAction
	Price          decimal.Decimal
	Quantity       decimal.Decimal
	Commission     decimal.Decimal
	PortfolioValue decimal.Decimal
	Reason         string
}
