package strategies

import (
	"fmt"

	"quantsim/types"
)

// Stochastic buys when %K crosses above %D inside the oversold zone and
// sells when %K crosses below %D inside the overbought zone.
type Stochastic struct {
	kPeriod    int
	dPeriod    int
	oversold   float64
	overbought float64
}

func NewStochastic(kPeriod, dPeriod int, oversold, overbought float64) *Stochastic {
	return &Stochastic{kPeriod: kPeriod, dPeriod: dPeriod, oversold: oversold, overbought: overbought}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("Stochastic (%d/%d)", s.kPeriod, s.dPeriod)
}

func (s *Stochastic) Signals(candles []types.Candle) []types.Signal {
	signals := make([]types.Signal, len(candles))
	if len(candles) < s.kPeriod {
		return signals
	}

	k := make([]float64, len(candles))
	okK := make([]bool, len(candles))
	for i := s.kPeriod - 1; i < len(candles); i++ {
		lowMin := candles[i-s.kPeriod+1].Low.InexactFloat64()
		highMax := candles[i-s.kPeriod+1].High.InexactFloat64()
		for _, c := range candles[i-s.kPeriod+2 : i+1] {
			if l := c.Low.InexactFloat64(); l < lowMin {
				lowMin = l
			}
			if h := c.High.InexactFloat64(); h > highMax {
				highMax = h
			}
		}
		if highMax == lowMin {
			continue
		}
		k[i] = 100 * (candles[i].Close.InexactFloat64() - lowMin) / (highMax - lowMin)
		okK[i] = true
	}

	d := make([]float64, len(candles))
	okD := make([]bool, len(candles))
	for i := range candles {
		if i < s.kPeriod-1+s.dPeriod-1 {
			continue
		}
		var sum float64
		valid := true
		for j := i - s.dPeriod + 1; j <= i; j++ {
			if !okK[j] {
				valid = false
				break
			}
			sum += k[j]
		}
		if !valid {
			continue
		}
		d[i] = sum / float64(s.dPeriod)
		okD[i] = true
	}

	long := false
	for i := range candles {
		if !okK[i] || !okD[i] {
			continue
		}
		switch {
		case !long && k[i] <= s.oversold && k[i] > d[i]:
			signals[i] = types.SignalBuy
			long = true
		case long && k[i] >= s.overbought && k[i] < d[i]:
			signals[i] = types.SignalSell
			long = false
		}
	}
	return signals
}
