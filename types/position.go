package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the single open lot of a long-only ledger. AvgEntryPrice is
// volume-weighted across merged buys and already includes slippage.
type Position struct {
	Symbol        string
	Quantity      decimal.Decimal
	AvgEntryPrice decimal.Decimal
	EntryTime     time.Time
}

func (p *Position) Value(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}

func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(p.AvgEntryPrice).Mul(p.Quantity)
}
