// Package strategies holds the signal generators consumed by the backtest
// engine. Each strategy maps a candle series to a per-bar signal series,
// gating on its own flat/long state so it only signals on transitions.
package strategies

import (
	"fmt"
	"math"
	"sort"

	"quantsim/internal/engine"
	"quantsim/types"
)

var factories = map[string]func(params map[string]float64) engine.Strategy{
	"moving-average": func(p map[string]float64) engine.Strategy {
		return NewMovingAverage(paramInt(p, "short", 20), paramInt(p, "long", 50))
	},
	"rsi": func(p map[string]float64) engine.Strategy {
		return NewRSI(paramInt(p, "period", 14), param(p, "oversold", 30), param(p, "overbought", 70))
	},
	"bollinger": func(p map[string]float64) engine.Strategy {
		return NewBollinger(paramInt(p, "period", 20), param(p, "std_dev", 2))
	},
	"macd": func(p map[string]float64) engine.Strategy {
		return NewMACD(paramInt(p, "fast", 12), paramInt(p, "slow", 26), paramInt(p, "signal", 9))
	},
	"stochastic": func(p map[string]float64) engine.Strategy {
		return NewStochastic(paramInt(p, "k_period", 14), paramInt(p, "d_period", 3), param(p, "oversold", 20), param(p, "overbought", 80))
	},
}

// ForName builds a strategy by registry name, overriding defaults with any
// matching keys in params. params may be nil.
func ForName(name string, params map[string]float64) (engine.Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return factory(params), nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func paramInt(params map[string]float64, key string, def int) int {
	if v, ok := params[key]; ok {
		return int(v)
	}
	return def
}

func closePrices(candles []types.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close.InexactFloat64()
	}
	return closes
}

// sma holds the rolling mean over period; positions before the window fills
// are NaN-free but flagged invalid via the returned ok slice.
func sma(values []float64, period int) ([]float64, []bool) {
	out := make([]float64, len(values))
	ok := make([]bool, len(values))
	if period <= 0 {
		return out, ok
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
			ok[i] = true
		}
	}
	return out, ok
}

// rollingStd is the rolling sample standard deviation (n-1 denominator).
func rollingStd(values []float64, period int) ([]float64, []bool) {
	out := make([]float64, len(values))
	ok := make([]bool, len(values))
	if period < 2 {
		return out, ok
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		var m float64
		for _, v := range window {
			m += v
		}
		m /= float64(period)
		var varianceSum float64
		for _, v := range window {
			varianceSum += (v - m) * (v - m)
		}
		out[i] = math.Sqrt(varianceSum / float64(period-1))
		ok[i] = true
	}
	return out, ok
}

// ema is the span-parameterized exponentially weighted mean with growing
// weights during warm-up, matching the common adjusted EWM definition.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	num := 0.0
	den := 0.0
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}
