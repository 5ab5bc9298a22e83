package engine

import (
	"fmt"

	"quantsim/types"
)

// ValidationResult is the outcome of a post-hoc ledger scan. The runtime
// state machine makes the flagged sequences structurally impossible, so this
// is a diagnostic for tests and audits, not a runtime guard.
type ValidationResult struct {
	Valid          bool
	Issues         []string
	TotalTrades    int
	BuyTrades      int
	SellTrades     int
	StopLossTrades int
}

// ValidateLedger replays the trade ledger and reports illegal sequences: a
// BUY while already long, or an exit while flat.
func ValidateLedger(trades []types.Trade) ValidationResult {
	result := ValidationResult{TotalTrades: len(trades)}
	long := false

	for i, t := range trades {
		switch {
		case t.Action == types.ActionBuy:
			if long {
				result.Issues = append(result.Issues, fmt.Sprintf("trade %d: BUY while already holding a position", i))
			}
			long = true
			result.BuyTrades++

		case t.Action.IsExit():
			if !long {
				result.Issues = append(result.Issues, fmt.Sprintf("trade %d: %s with no position held", i, t.Action))
			}
			long = false
			if t.Action == types.ActionStopLoss {
				result.StopLossTrades++
			} else {
				result.SellTrades++
			}

		default:
			result.Issues = append(result.Issues, fmt.Sprintf("trade %d: unknown action %q", i, t.Action))
		}
	}

	result.Valid = len(result.Issues) == 0
	return result
}
