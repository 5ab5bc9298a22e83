package types

// Signal is a per-bar trading instruction produced by a signal generator.
// The zero value is Hold, so warm-up bars in a signal series act as no-ops.
type Signal int8

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}
