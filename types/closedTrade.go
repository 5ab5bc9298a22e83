package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosedTrade is a reconstructed round trip: one BUY matched FIFO against one
// exit. ReturnPct for a STOP_LOSS exit is forced negative, so a stop can never
// be counted as a win even when friction timing made it nominally profitable.
type ClosedTrade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	PnL        decimal.Decimal
	ReturnPct  decimal.Decimal
	ExitAction TradeAction
	IsWin      bool
}
