package engine

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"quantsim/types"
)

// Strategy turns a price series into a per-bar signal series, aligned 1:1
// with the candles. Warm-up bars must emit SignalHold.
type Strategy interface {
	Name() string
	Signals(candles []types.Candle) []types.Signal
}

// Result is everything a run exposes to report, export and chart consumers.
// Report is nil when the input series was empty.
type Result struct {
	Symbol     string
	Strategy   string
	Start      time.Time
	End        time.Time
	Trades     []types.Trade
	Snapshots  []types.PortfolioSnapshot
	Closed     []types.ClosedTrade
	FinalValue decimal.Decimal
	Report     *Report
	Rolling    *RollingMetrics
}

// Engine drives single-instrument backtests for one strategy and one
// configuration. A fresh ledger is created per run, so one Engine may be used
// for many runs as long as the runs do not share bars concurrently.
type Engine struct {
	cfg          *SimulationConfig
	strategy     Strategy
	showProgress bool
}

func NewEngine(strategy Strategy, cfg *SimulationConfig) (*Engine, error) {
	if strategy == nil {
		return nil, ErrMissingStrategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, strategy: strategy}, nil
}

// ShowProgress enables a progress bar over the bar loop.
func (e *Engine) ShowProgress(on bool) {
	e.showProgress = on
}

// Run generates signals with the configured strategy and replays them.
func (e *Engine) Run(symbol string, candles []types.Candle) (*Result, error) {
	if len(candles) == 0 {
		return e.emptyResult(symbol), nil
	}
	signals := e.strategy.Signals(candles)
	return e.RunSignals(symbol, candles, signals)
}

// RunSignals replays an externally produced signal series against the bars.
// The series must be aligned 1:1 with the candles.
func (e *Engine) RunSignals(symbol string, candles []types.Candle, signals []types.Signal) (*Result, error) {
	if len(candles) == 0 {
		return e.emptyResult(symbol), nil
	}
	if len(signals) != len(candles) {
		return nil, ErrSignalLengthMismatch
	}

	b := &backtester{
		symbol:    symbol,
		candles:   candles,
		signals:   signals,
		cfg:       e.cfg,
		portfolio: newPortfolio(e.cfg),
		overlay:   newRiskOverlay(e.cfg, candles),
	}
	if e.showProgress {
		b.bar = initProgressBar(len(candles))
	}
	b.run()

	closed := pairTrades(b.portfolio.trades)
	result := &Result{
		Symbol:     symbol,
		Strategy:   e.strategy.Name(),
		Start:      candles[0].Timestamp,
		End:        candles[len(candles)-1].Timestamp,
		Trades:     b.portfolio.trades,
		Snapshots:  b.portfolio.snapshots,
		Closed:     closed,
		FinalValue: b.portfolio.cash,
		Report:     generateReport(b.portfolio.snapshots, closed, e.cfg),
		Rolling:    calcRollingMetrics(b.portfolio.snapshots, e.cfg.RollingWindow),
	}
	return result, nil
}

func (e *Engine) emptyResult(symbol string) *Result {
	return &Result{
		Symbol:     symbol,
		Strategy:   e.strategy.Name(),
		FinalValue: e.cfg.InitialCapital,
	}
}

// backtester is the per-run state machine. States are FLAT and LONG; long
// carries the transition. The bar order is fixed: forced exit, then strategy
// sell, then strategy buy, then snapshot.
type backtester struct {
	symbol    string
	candles   []types.Candle
	signals   []types.Signal
	cfg       *SimulationConfig
	portfolio *portfolio
	overlay   *riskOverlay
	long      bool
	bar       *progressbar.ProgressBar
}

func (b *backtester) run() {
	for i, candle := range b.candles {
		price := candle.Close
		signal := b.signals[i]

		switch {
		case b.long && b.tryForcedExit(i, candle):
			// forced exit consumed the bar, strategy signal skipped

		case b.long && signal == types.SignalSell:
			if b.portfolio.Sell(b.symbol, price, b.openQuantity(), candle.Timestamp, types.ActionSell, "") {
				b.long = false
				log.Info().
					Str("symbol", b.symbol).
					Str("price", price.String()).
					Time("bar", candle.Timestamp).
					Msg("strategy sell")
			}

		case !b.long && signal == types.SignalBuy:
			quantity := b.sizeBuy(price)
			if quantity.IsPositive() && b.portfolio.Buy(b.symbol, price, quantity, candle.Timestamp) {
				b.long = true
				log.Info().
					Str("symbol", b.symbol).
					Str("price", price.String()).
					Str("quantity", quantity.String()).
					Time("bar", candle.Timestamp).
					Msg("strategy buy")
			}
		}

		b.portfolio.recordSnapshot(candle.Timestamp, price)
		if b.bar != nil {
			b.bar.Add(1)
		}
	}

	// Liquidate at the last close if still long. Same execution path as any
	// sell, so slippage and commission still apply; no extra snapshot.
	if b.long {
		last := b.candles[len(b.candles)-1]
		if b.portfolio.Sell(b.symbol, last.Close, b.openQuantity(), last.Timestamp, types.ActionSell, "final") {
			b.long = false
			log.Info().
				Str("symbol", b.symbol).
				Str("price", last.Close.String()).
				Time("bar", last.Timestamp).
				Msg("final liquidation")
		}
	}
}

func (b *backtester) tryForcedExit(i int, candle types.Candle) bool {
	decision := b.overlay.Evaluate(i, candle, b.portfolio.position)
	if decision == nil {
		return false
	}
	if !b.portfolio.Sell(b.symbol, decision.price, b.openQuantity(), candle.Timestamp, decision.action, decision.reason) {
		return false
	}
	b.long = false
	log.Info().
		Str("symbol", b.symbol).
		Str("price", decision.price.String()).
		Str("reason", decision.reason).
		Time("bar", candle.Timestamp).
		Msg("forced exit")
	return true
}

// sizeBuy invests the configured fraction of cash, flooring to whole shares
// unless fractional sizing is enabled. The reserved remainder absorbs
// commission and slippage.
func (b *backtester) sizeBuy(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	investable := b.portfolio.cash.Mul(b.cfg.InvestFraction)
	quantity := investable.Div(price)
	if !b.cfg.FractionalShares {
		quantity = quantity.Floor()
	}
	return quantity
}

func (b *backtester) openQuantity() decimal.Decimal {
	if b.portfolio.position == nil {
		return decimal.Zero
	}
	return b.portfolio.position.Quantity
}

func initProgressBar(bars int) *progressbar.ProgressBar {
	return progressbar.NewOptions(bars,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying bars..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
