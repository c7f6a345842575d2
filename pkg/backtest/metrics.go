// Performance metric formulas for backtest results
package backtest

import "math"

// periodsPerYear is the daily-bar annualization factor.
const periodsPerYear = 252

// computeMetrics fills the metric fields of a result from its equity curve,
// return vector and position path. The formulas are deterministic: the same
// inputs always produce bit-identical outputs.
func computeMetrics(r *Result, reversals ReversalPolicy) {
	r.TotalReturn = r.EquityCurve[len(r.EquityCurve)-1] - 1
	r.AnnualizedSharpe = annualizedSharpe(r.StrategyReturns)
	r.MaxDrawdown = maxDrawdown(r.EquityCurve)
	r.WinRate = winRate(r.StrategyReturns)
	r.TradeCount = tradeCount(r.Positions, reversals)
}

// annualizedSharpe is mean(returns)*252 / (std(returns)*sqrt(252)), with a
// zero standard deviation defined as zero rather than a division error.
func annualizedSharpe(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range returns {
		mean += v
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, v := range returns {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean * periodsPerYear / (std * math.Sqrt(periodsPerYear))
}

// maxDrawdown is the most negative equity/runningMax - 1 over the curve.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if dd := e/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// winRate counts positive returns against nonzero returns. Flat bars are
// excluded from the denominator.
func winRate(returns []float64) float64 {
	wins, nonzero := 0, 0
	for _, v := range returns {
		if v == 0 {
			continue
		}
		nonzero++
		if v > 0 {
			wins++
		}
	}
	if nonzero == 0 {
		return 0
	}
	return float64(wins) / float64(nonzero)
}

// tradeCount counts position-state transitions. A direct reversal is two
// transitions under ReversalCountsTwo, one under ReversalCountsOne.
func tradeCount(positions []int, reversals ReversalPolicy) int {
	count := 0
	for t := 1; t < len(positions); t++ {
		if positions[t] == positions[t-1] {
			continue
		}
		if positions[t]*positions[t-1] < 0 && reversals == ReversalCountsTwo {
			count += 2
			continue
		}
		count++
	}
	return count
}
