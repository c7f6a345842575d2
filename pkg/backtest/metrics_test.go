package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedSharpe(t *testing.T) {
	assert.Equal(t, 0.0, annualizedSharpe(nil))
	assert.Equal(t, 0.0, annualizedSharpe([]float64{}))
	assert.Equal(t, 0.0, annualizedSharpe([]float64{0.01, 0.01, 0.01}), "zero variance is zero, not Inf")
	assert.Equal(t, 0.0, annualizedSharpe([]float64{0, 0, 0}))

	// returns [0.01, -0.01]: mean 0, so the ratio is exactly zero.
	assert.Equal(t, 0.0, annualizedSharpe([]float64{0.01, -0.01}))

	// returns [0.02, 0]: mean 0.01, population std 0.01.
	// sharpe = 0.01*252 / (0.01*sqrt(252)) = sqrt(252).
	got := annualizedSharpe([]float64{0.02, 0})
	assert.InDelta(t, math.Sqrt(252), got, 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"monotone rise", []float64{1, 1.1, 1.2, 1.3}, 0},
		{"flat", []float64{1, 1, 1}, 0},
		{"single dip", []float64{1, 1.2, 0.9, 1.5}, 0.9/1.2 - 1},
		{"dip below start", []float64{1, 0.8, 0.9}, -0.2},
		{"later deeper dip", []float64{1, 1.5, 1.2, 1.6, 0.8}, 0.8/1.6 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, maxDrawdown(tt.equity), 1e-12)
		})
	}
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, winRate(nil))
	assert.Equal(t, 0.0, winRate([]float64{0, 0, 0}), "no nonzero returns")
	assert.Equal(t, 1.0, winRate([]float64{0.01, 0.02}))
	assert.Equal(t, 0.0, winRate([]float64{-0.01, -0.02}))

	// Zeros are excluded from the denominator: 2 wins of 3 decided bars.
	assert.InDelta(t, 2.0/3.0, winRate([]float64{0.01, 0, -0.01, 0, 0.02}), 1e-12)
}

func TestTradeCount(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		policy    ReversalPolicy
		want      int
	}{
		{"no trades", []int{0, 0, 0}, ReversalCountsTwo, 0},
		{"single entry", []int{0, 1, 1}, ReversalCountsTwo, 1},
		{"round trip", []int{0, 1, 0}, ReversalCountsTwo, 2},
		{"reversal counts two", []int{0, 1, -1, -1}, ReversalCountsTwo, 3},
		{"reversal counts one", []int{0, 1, -1, -1}, ReversalCountsOne, 2},
		{"double reversal two", []int{0, 1, -1, 1}, ReversalCountsTwo, 5},
		{"double reversal one", []int{0, 1, -1, 1}, ReversalCountsOne, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tradeCount(tt.positions, tt.policy))
		})
	}
}

func TestMetrics_RecomputeFromEquityCurve(t *testing.T) {
	series := validatedSeries(t, tenBarCloses)
	signals := []Signal{Hold, Buy, Hold, Sell, Buy, Hold, Hold, Sell, Buy, Hold}

	sim := NewSimulator(SimConfig{})
	result, err := sim.Run(series, signals, 0)
	require.NoError(t, err)

	// The reported figures reproduce from the returned curve alone.
	curve := result.EquityCurve
	assert.InDelta(t, curve[len(curve)-1]-1, result.TotalReturn, 1e-9)

	peak := curve[0]
	worst := 0.0
	for _, e := range curve {
		if e > peak {
			peak = e
		}
		if dd := e/peak - 1; dd < worst {
			worst = dd
		}
	}
	assert.InDelta(t, worst, result.MaxDrawdown, 1e-9)
}

func TestComputeMetrics_Wiring(t *testing.T) {
	r := &Result{
		EquityCurve:     []float64{1, 1.1, 1.045},
		StrategyReturns: []float64{0, 0.1, -0.05},
		Positions:       []int{0, 1, 1},
	}
	computeMetrics(r, ReversalCountsTwo)

	assert.InDelta(t, 0.045, r.TotalReturn, 1e-12)
	assert.InDelta(t, 1.045/1.1-1, r.MaxDrawdown, 1e-12)
	assert.Equal(t, 0.5, r.WinRate)
	assert.Equal(t, 1, r.TradeCount)
	assert.NotZero(t, r.AnnualizedSharpe)
}
