package backtest

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// ReversalPolicy controls how a direct long-to-short flip is counted in the
// trade count.
type ReversalPolicy string

const (
	// ReversalCountsTwo counts a reversal as an exit plus an entry.
	ReversalCountsTwo ReversalPolicy = "two"
	// ReversalCountsOne counts a reversal as a single transition.
	ReversalCountsOne ReversalPolicy = "one"
)

// SimConfig configures the simulator.
type SimConfig struct {
	// AllowShort extends the position domain from {0,1} to {-1,0,1}: a
	// SELL signal opens a short instead of going flat.
	AllowShort bool
	// Reversals selects the trade-count policy; defaults to
	// ReversalCountsTwo.
	Reversals ReversalPolicy
}

// Simulator applies one-bar-delayed signals to market returns. The position
// entering bar t is derived strictly from signal[t-1]; the current bar's
// signal is never visible to the current bar's return.
type Simulator struct {
	cfg SimConfig
}

// NewSimulator creates a simulator.
func NewSimulator(cfg SimConfig) *Simulator {
	if cfg.Reversals == "" {
		cfg.Reversals = ReversalCountsTwo
	}
	return &Simulator{cfg: cfg}
}

// BacktestError indicates a simulation cannot produce a result.
type BacktestError struct {
	Message string
}

func (e *BacktestError) Error() string {
	return "backtest: " + e.Message
}

// Result holds the outcome of one simulation.
type Result struct {
	Params           ParameterSet `json:"params,omitempty"`
	TotalReturn      float64      `json:"total_return"`
	AnnualizedSharpe float64      `json:"annualized_sharpe"`
	MaxDrawdown      float64      `json:"max_drawdown"`
	WinRate          float64      `json:"win_rate"`
	TradeCount       int          `json:"trade_count"`
	EquityCurve      []float64    `json:"equity_curve"`

	// StrategyReturns are the per-bar returns realized by the strategy,
	// aligned with EquityCurve; index 0 corresponds to the first bar and is
	// always zero.
	StrategyReturns []float64 `json:"-"`
	// Positions is the exposure path that produced the returns.
	Positions []int `json:"-"`
}

// Run simulates the signals over the series. warmupEnd is the index of the
// first bar with a defined indicator value (-1 when none); fewer than two
// usable bars from there is a *BacktestError.
func (s *Simulator) Run(series *market.Series, signals []Signal, warmupEnd int) (*Result, error) {
	n := series.Len()
	if len(signals) != n {
		return nil, &BacktestError{Message: fmt.Sprintf("signal length %d does not match series length %d", len(signals), n)}
	}
	if warmupEnd < 0 || n-warmupEnd < 2 {
		available := 0
		if warmupEnd >= 0 {
			available = n - warmupEnd
		}
		return nil, &BacktestError{Message: fmt.Sprintf("need at least 2 bars after warmup, have %d", available)}
	}

	closes := series.Closes()

	positions := make([]int, n)
	returns := make([]float64, n)
	equity := make([]float64, n)
	equity[0] = 1

	for t := 1; t < n; t++ {
		positions[t] = s.nextPosition(positions[t-1], signals[t-1])
		marketReturn := closes[t]/closes[t-1] - 1
		returns[t] = marketReturn * float64(positions[t])
		equity[t] = equity[t-1] * (1 + returns[t])
	}

	result := &Result{
		EquityCurve:     equity,
		StrategyReturns: returns,
		Positions:       positions,
	}
	computeMetrics(result, s.cfg.Reversals)

	return result, nil
}

// nextPosition derives the exposure entering the current bar from the
// previous bar's signal.
func (s *Simulator) nextPosition(prev int, signal Signal) int {
	switch signal {
	case Buy:
		return 1
	case Sell:
		if s.cfg.AllowShort {
			return -1
		}
		return 0
	default:
		return prev
	}
}
