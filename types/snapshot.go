package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is the end-of-bar portfolio state. Exactly one snapshot
// exists per input bar and TotalValue always equals Cash + PositionValue.
type PortfolioSnapshot struct {
	Time          time.Time
	Cash          decimal.Decimal
	PositionValue decimal.Decimal
	TotalValue    decimal.Decimal
}
