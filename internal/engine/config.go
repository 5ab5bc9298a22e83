package engine

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Configuration errors, surfaced before the run loop starts.
var (
	ErrNonPositiveCapital   = errors.New("initial capital must be positive")
	ErrInvalidCommission    = errors.New("commission rate must be in [0, 1)")
	ErrInvalidSlippage      = errors.New("slippage rate must be in [0, 1)")
	ErrInvalidFraction      = errors.New("invest fraction must be in (0, 1]")
	ErrInvalidStopLoss      = errors.New("stop loss percentage must be positive")
	ErrInvalidTakeProfit    = errors.New("take profit percentage must be positive")
	ErrLookbackTooShort     = errors.New("support lookback must be at least 5 bars")
	ErrInvalidRollingSpan   = errors.New("rolling window must be positive")
	ErrNegativeRiskFree     = errors.New("risk free rate must not be negative")
	ErrMissingStrategy      = errors.New("no strategy configured")
	ErrSignalLengthMismatch = errors.New("signal series not aligned with candles")
)

// SimulationConfig carries everything a single run needs besides the data.
// StopLossPct, TakeProfitPct and SupportLookback are optional risk overlays;
// the zero value disables each of them.
type SimulationConfig struct {
	InitialCapital   decimal.Decimal
	CommissionRate   decimal.Decimal
	SlippageRate     decimal.Decimal
	InvestFraction   decimal.Decimal
	StopLossPct      decimal.Decimal
	TakeProfitPct    decimal.Decimal
	SupportLookback  int
	FractionalShares bool
	RiskFreeRate     decimal.Decimal
	RollingWindow    int
}

func NewSimulationConfig(initialCapital decimal.Decimal) *SimulationConfig {
	return &SimulationConfig{
		InitialCapital: initialCapital,
		CommissionRate: decimal.Zero,
		SlippageRate:   decimal.Zero,
		InvestFraction: decimal.RequireFromString("0.95"),
		RiskFreeRate:   decimal.Zero,
		RollingWindow:  252,
	}
}

func (c *SimulationConfig) Validate() error {
	one := decimal.NewFromInt(1)
	if !c.InitialCapital.IsPositive() {
		return ErrNonPositiveCapital
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThanOrEqual(one) {
		return ErrInvalidCommission
	}
	if c.SlippageRate.IsNegative() || c.SlippageRate.GreaterThanOrEqual(one) {
		return ErrInvalidSlippage
	}
	if !c.InvestFraction.IsPositive() || c.InvestFraction.GreaterThan(one) {
		return ErrInvalidFraction
	}
	if c.StopLossPct.IsNegative() {
		return ErrInvalidStopLoss
	}
	if c.TakeProfitPct.IsNegative() {
		return ErrInvalidTakeProfit
	}
	if c.SupportLookback != 0 && c.SupportLookback < 5 {
		return ErrLookbackTooShort
	}
	if c.RollingWindow <= 0 {
		return ErrInvalidRollingSpan
	}
	if c.RiskFreeRate.IsNegative() {
		return ErrNegativeRiskFree
	}
	return nil
}
