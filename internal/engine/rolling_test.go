package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"quantsim/types"
)

func TestCalcRollingMetrics(t *testing.T) {
	t.Run("series shorter than window", func(t *testing.T) {
		if got := calcRollingMetrics(flatSnaps(100, 10), 20); got != nil {
			t.Errorf("calcRollingMetrics() = %+v, want nil", got)
		}
	})

	t.Run("flat series", func(t *testing.T) {
		rm := calcRollingMetrics(flatSnaps(100, 10), 5)
		if rm == nil {
			t.Fatal("expected rolling metrics")
		}
		// 9 returns, window 5: points at snapshot indexes 5..9.
		assert.Len(t, rm.Times, 5)
		for i := range rm.Times {
			assert.True(t, rm.Sharpe[i].IsZero(), "sharpe[%d]", i)
			assert.True(t, rm.Volatility[i].IsZero(), "volatility[%d]", i)
			assert.True(t, rm.Drawdown[i].IsZero(), "drawdown[%d]", i)
		}
	})

	t.Run("drawdown against in-window peak", func(t *testing.T) {
		rm := calcRollingMetrics(snaps(100, 100, 100, 100, 100, 90), 5)
		if rm == nil {
			t.Fatal("expected rolling metrics")
		}
		last := rm.Drawdown[len(rm.Drawdown)-1]
		assert.InDelta(t, -10.0, last.InexactFloat64(), 1e-9)
	})

	t.Run("times align with bar of last return", func(t *testing.T) {
		snapshots := snaps(100, 101, 102, 103, 104, 105, 106)
		rm := calcRollingMetrics(snapshots, 5)
		if rm == nil {
			t.Fatal("expected rolling metrics")
		}
		assert.Equal(t, snapshots[5].Time, rm.Times[0])
		assert.Equal(t, snapshots[6].Time, rm.Times[1])
	})
}

func monthSnap(y int, m time.Month, d int, value float64) types.PortfolioSnapshot {
	total := decimal.NewFromFloat(value)
	return types.PortfolioSnapshot{
		Time:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Cash:       total,
		TotalValue: total,
	}
}

func TestMonthlyReturns(t *testing.T) {
	snapshots := []types.PortfolioSnapshot{
		monthSnap(2024, time.January, 10, 10000),
		monthSnap(2024, time.January, 31, 10200),
		monthSnap(2024, time.February, 15, 10100),
		monthSnap(2024, time.February, 29, 10404),
		monthSnap(2024, time.March, 29, 9883.8),
	}

	got := MonthlyReturns(snapshots)
	if len(got) != 2 {
		t.Fatalf("months = %d, want 2", len(got))
	}

	assert.Equal(t, time.February, got[0].Month)
	// month-end 10200 -> 10404
	assert.InDelta(t, 2.0, got[0].Return.InexactFloat64(), 1e-9)

	assert.Equal(t, time.March, got[1].Month)
	// month-end 10404 -> 9883.8
	assert.InDelta(t, -5.0, got[1].Return.InexactFloat64(), 1e-6)
}

func TestMonthlyReturnsSingleMonth(t *testing.T) {
	snapshots := []types.PortfolioSnapshot{
		monthSnap(2024, time.January, 10, 10000),
		monthSnap(2024, time.January, 31, 10500),
	}
	if got := MonthlyReturns(snapshots); got != nil {
		t.Errorf("MonthlyReturns() = %+v, want nil", got)
	}
}

func TestCompareBenchmark(t *testing.T) {
	t.Run("identical series has beta one", func(t *testing.T) {
		snapshots := snaps(100, 102, 101, 105, 104, 108)
		benchmark := dayCandles(100, 102, 101, 105, 104, 108)

		got := CompareBenchmark(snapshots, benchmark)
		assert.InDelta(t, 1.0, got.Beta.InexactFloat64(), 1e-9)
		assert.InDelta(t, 1.0, got.Correlation.InexactFloat64(), 1e-9)
		assert.InDelta(t, 0.0, got.Alpha.InexactFloat64(), 1e-6)
	})

	t.Run("flat benchmark yields zeros", func(t *testing.T) {
		snapshots := snaps(100, 102, 101, 105)
		benchmark := dayCandles(50, 50, 50, 50)

		got := CompareBenchmark(snapshots, benchmark)
		assert.True(t, got.Beta.IsZero())
		assert.True(t, got.Correlation.IsZero())
	})

	t.Run("too short", func(t *testing.T) {
		got := CompareBenchmark(snaps(100), dayCandles(100))
		assert.True(t, got.Beta.IsZero())
		assert.True(t, got.Alpha.IsZero())
	})
}
