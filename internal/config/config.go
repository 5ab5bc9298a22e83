package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"quantsim/internal/engine"
	"quantsim/types"
)

var (
	ErrNoSymbols     = errors.New("config must name at least one symbol")
	ErrNoStrategy    = errors.New("config must name a strategy")
	ErrBadTimeRange  = errors.New("start date must be before end date")
	ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrBadInterval   = errors.New("unknown interval")
)

// RunConfig is the YAML description of a run or a batch of runs.
type RunConfig struct {
	Symbols  []string           `yaml:"symbols"`
	Strategy string             `yaml:"strategy"`
	Params   map[string]float64 `yaml:"params"`

	Interval string `yaml:"interval"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`

	InitialCapital   float64 `yaml:"initial_capital"`
	CommissionRate   float64 `yaml:"commission_rate"`
	SlippageRate     float64 `yaml:"slippage_rate"`
	InvestFraction   float64 `yaml:"invest_fraction"`
	StopLossPct      float64 `yaml:"stop_loss_pct"`
	TakeProfitPct    float64 `yaml:"take_profit_pct"`
	SupportLookback  int     `yaml:"support_lookback"`
	FractionalShares bool    `yaml:"fractional_shares"`
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
	RollingWindow    int     `yaml:"rolling_window"`

	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

// Load reads and validates a run configuration from a YAML file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &RunConfig{
		Interval:       string(types.Day),
		InitialCapital: 10000,
		InvestFraction: 0.95,
		RollingWindow:  252,
		Workers:        4,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *RunConfig) Validate() error {
	if len(c.Symbols) == 0 {
		return ErrNoSymbols
	}
	if c.Strategy == "" {
		return ErrNoStrategy
	}
	if _, ok := types.ConvertInterval[c.Interval]; !ok {
		return fmt.Errorf("%w: %q", ErrBadInterval, c.Interval)
	}
	if _, _, err := c.TimeRange(); err != nil {
		return err
	}
	// Simulation parameters get their own fail-fast pass.
	return c.SimulationConfig().Validate()
}

// SimulationConfig translates the YAML numbers into the engine's decimal
// configuration.
func (c *RunConfig) SimulationConfig() *engine.SimulationConfig {
	cfg := engine.NewSimulationConfig(decimal.NewFromFloat(c.InitialCapital))
	cfg.CommissionRate = decimal.NewFromFloat(c.CommissionRate)
	cfg.SlippageRate = decimal.NewFromFloat(c.SlippageRate)
	if c.InvestFraction > 0 {
		cfg.InvestFraction = decimal.NewFromFloat(c.InvestFraction)
	}
	cfg.StopLossPct = decimal.NewFromFloat(c.StopLossPct)
	cfg.TakeProfitPct = decimal.NewFromFloat(c.TakeProfitPct)
	cfg.SupportLookback = c.SupportLookback
	cfg.FractionalShares = c.FractionalShares
	cfg.RiskFreeRate = decimal.NewFromFloat(c.RiskFreeRate)
	if c.RollingWindow > 0 {
		cfg.RollingWindow = c.RollingWindow
	}
	return cfg
}

// TimeRange parses the configured start/end dates (YYYY-MM-DD, UTC).
func (c *RunConfig) TimeRange() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", c.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", c.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end date: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrBadTimeRange
	}
	return start, end, nil
}

func (c *RunConfig) IntervalType() types.Interval {
	return types.ConvertInterval[c.Interval]
}

// DatabaseURL resolves the candle store DSN from the environment, loading a
// .env file first when one exists.
func DatabaseURL() (string, error) {
	_ = godotenv.Load()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", ErrNoDatabaseURL
	}
	return url, nil
}
