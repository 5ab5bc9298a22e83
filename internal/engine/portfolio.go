package engine

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"quantsim/types"
)

// portfolio is the execution ledger of a single run: cash, at most one open
// position, and the append-only trade and snapshot histories. Buy and Sell
// apply slippage and commission and refuse anything that would break the
// solvency or position invariants; a refusal is a no-op, never an error.
type portfolio struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	position       *types.Position
	trades         []types.Trade
	snapshots      []types.PortfolioSnapshot

	commissionRate  decimal.Decimal
	slippageRate    decimal.Decimal
	allowPyramiding bool
}

func newPortfolio(cfg *SimulationConfig) *portfolio {
	return &portfolio{
		initialCapital: cfg.InitialCapital,
		cash:           cfg.InitialCapital,
		commissionRate: cfg.CommissionRate,
		slippageRate:   cfg.SlippageRate,
	}
}

var one = decimal.NewFromInt(1)

// Buy opens the position (or merges into it at volume-weighted average cost
// when pyramiding is allowed) at price adjusted upward by slippage. Returns
// false without side effects when cash cannot cover cost plus commission.
func (p *portfolio) Buy(symbol string, price, quantity decimal.Decimal, ts time.Time) bool {
	if !quantity.IsPositive() || !price.IsPositive() {
		return false
	}
	if p.position != nil && !p.allowPyramiding {
		log.Debug().Str("symbol", symbol).Time("bar", ts).Msg("buy rejected: position already open")
		return false
	}

	adjustedPrice := price.Mul(one.Add(p.slippageRate))
	grossCost := adjustedPrice.Mul(quantity)
	commission := grossCost.Mul(p.commissionRate)
	totalCost := grossCost.Add(commission)

	if p.cash.LessThan(totalCost) {
		log.Debug().
			Str("symbol", symbol).
			Str("cost", totalCost.StringFixed(2)).
			Str("cash", p.cash.StringFixed(2)).
			Time("bar", ts).
			Msg("buy rejected: insufficient cash")
		return false
	}

	p.cash = p.cash.Sub(totalCost)

	if p.position == nil {
		p.position = &types.Position{
			Symbol:        symbol,
			Quantity:      quantity,
			AvgEntryPrice: adjustedPrice,
			EntryTime:     ts,
		}
	} else {
		merged := p.position.Quantity.Add(quantity)
		p.position.AvgEntryPrice = weightedAvg(p.position.AvgEntryPrice, p.position.Quantity, adjustedPrice, quantity)
		p.position.Quantity = merged
	}

	p.trades = append(p.trades, types.Trade{
		Timestamp:      ts,
		Symbol:         symbol,
		Action:         types.ActionBuy,
		Price:          adjustedPrice,
		Quantity:       quantity,
		Commission:     commission,
		PortfolioValue: p.totalValue(adjustedPrice),
	})
	return true
}

// Sell closes quantity of the open position at price adjusted downward by
// slippage. action distinguishes a strategy SELL from a forced STOP_LOSS or
// TAKE_PROFIT exit; reason travels onto the ledger entry for audit.
func (p *portfolio) Sell(symbol string, price, quantity decimal.Decimal, ts time.Time, action types.TradeAction, reason string) bool {
	if p.position == nil || p.position.Symbol != symbol {
		log.Debug().Str("symbol", symbol).Time("bar", ts).Msg("sell rejected: no open position")
		return false
	}
	if !quantity.IsPositive() || quantity.GreaterThan(p.position.Quantity) {
		log.Debug().Str("symbol", symbol).Time("bar", ts).Msg("sell rejected: quantity exceeds position")
		return false
	}

	adjustedPrice := price.Mul(one.Sub(p.slippageRate))
	grossRevenue := adjustedPrice.Mul(quantity)
	commission := grossRevenue.Mul(p.commissionRate)
	netRevenue := grossRevenue.Sub(commission)

	p.cash = p.cash.Add(netRevenue)
	p.position.Quantity = p.position.Quantity.Sub(quantity)
	if p.position.Quantity.IsZero() {
		p.position = nil
	}

	p.trades = append(p.trades, types.Trade{
		Timestamp:      ts,
		Symbol:         symbol,
		Action:         action,
		Price:          adjustedPrice,
		Quantity:       quantity,
		Commission:     commission,
		PortfolioValue: p.totalValue(adjustedPrice),
		Reason:         reason,
	})
	return true
}

// recordSnapshot appends the end-of-bar state marked at markPrice. Called
// exactly once per bar whether or not the bar traded.
func (p *portfolio) recordSnapshot(ts time.Time, markPrice decimal.Decimal) {
	positionValue := decimal.Zero
	if p.position != nil {
		positionValue = p.position.Value(markPrice)
	}
	p.snapshots = append(p.snapshots, types.PortfolioSnapshot{
		Time:          ts,
		Cash:          p.cash,
		PositionValue: positionValue,
		TotalValue:    p.cash.Add(positionValue),
	})
}

func (p *portfolio) totalValue(markPrice decimal.Decimal) decimal.Decimal {
	if p.position == nil {
		return p.cash
	}
	return p.cash.Add(p.position.Value(markPrice))
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
