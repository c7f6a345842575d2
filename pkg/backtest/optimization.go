// Parameter-grid optimization over indicator, signal and simulation layers
package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/quantsweep/quantsweep/internal/indicators"
	"github.com/quantsweep/quantsweep/internal/market"
	"github.com/quantsweep/quantsweep/internal/metrics"
)

// ============================================================================
// PARAMETER GRID
// ============================================================================

// ParameterSet is a named tuple of numeric parameters. Identity is the value
// tuple; Key renders it canonically.
type ParameterSet map[string]float64

// Clone creates a copy of the parameter set.
func (ps ParameterSet) Clone() ParameterSet {
	clone := make(ParameterSet, len(ps))
	for k, v := range ps {
		clone[k] = v
	}
	return clone
}

// Key renders the set as a stable "name=value" string sorted by name.
func (ps ParameterSet) Key() string {
	names := make([]string, 0, len(ps))
	for k := range ps {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%g", k, ps[k])
	}
	return strings.Join(parts, ",")
}

// Int returns a parameter rounded to the nearest integer.
func (ps ParameterSet) Int(name string) int {
	return int(math.Round(ps[name]))
}

// Float returns a parameter value.
func (ps ParameterSet) Float(name string) float64 {
	return ps[name]
}

// ParamRange is an inclusive numeric range with a step size. A non-positive
// Step, or a Max below Min, collapses the range to the single value Min; a
// fixed parameter is written as {Min: v, Max: v}.
type ParamRange struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// values enumerates the range without accumulating floating-point error.
func (r ParamRange) values() []float64 {
	if r.Step <= 0 || r.Max < r.Min {
		return []float64{r.Min}
	}
	count := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = r.Min + r.Step*float64(i)
	}
	return out
}

// Constraint reports whether a combination is structurally valid. Invalid
// combinations are dropped before dispatch; they are never evaluated and
// never appear as skipped rows.
type Constraint func(ParameterSet) bool

// ThresholdOrdering keeps combinations with buy_threshold < sell_threshold.
func ThresholdOrdering(ps ParameterSet) bool {
	buy, hasBuy := ps["buy_threshold"]
	sell, hasSell := ps["sell_threshold"]
	if !hasBuy || !hasSell {
		return true
	}
	return buy < sell
}

// WindowOrdering keeps combinations with fast_window < slow_window.
func WindowOrdering(ps ParameterSet) bool {
	fast, hasFast := ps["fast_window"]
	slow, hasSlow := ps["slow_window"]
	if !hasFast || !hasSlow {
		return true
	}
	return fast < slow
}

// Grid is the Cartesian product of parameter ranges, minus the combinations
// rejected by its constraints.
type Grid struct {
	Ranges      []ParamRange
	Constraints []Constraint
}

// combinations enumerates the full product in deterministic range order.
func (g Grid) combinations() []ParameterSet {
	combos := []ParameterSet{{}}
	for _, r := range g.Ranges {
		vals := r.values()
		next := make([]ParameterSet, 0, len(combos)*len(vals))
		for _, base := range combos {
			for _, v := range vals {
				ps := base.Clone()
				ps[r.Name] = v
				next = append(next, ps)
			}
		}
		combos = next
	}
	return combos
}

func (g Grid) keep(ps ParameterSet) bool {
	for _, c := range g.Constraints {
		if !c(ps) {
			return false
		}
	}
	return true
}

// ============================================================================
// EVALUATION WIRING
// ============================================================================

// IndicatorSpec binds a parameter set to a concrete indicator. Combinations
// with the same CacheKey share one precomputed series.
type IndicatorSpec struct {
	Build    func(ps ParameterSet) (indicators.Indicator, error)
	CacheKey func(ps ParameterSet) string
}

// RuleFactory binds a parameter set to a signal rule.
type RuleFactory func(ps ParameterSet) (SignalRule, error)

// SelectionPolicy reports whether result a should be preferred over b.
type SelectionPolicy func(a, b *Result) bool

// BestBySharpe maximizes the annualized Sharpe ratio; ties break to higher
// total return, then to smaller absolute drawdown.
func BestBySharpe(a, b *Result) bool {
	if a.AnnualizedSharpe != b.AnnualizedSharpe {
		return a.AnnualizedSharpe > b.AnnualizedSharpe
	}
	if a.TotalReturn != b.TotalReturn {
		return a.TotalReturn > b.TotalReturn
	}
	return math.Abs(a.MaxDrawdown) < math.Abs(b.MaxDrawdown)
}

// ============================================================================
// RESULT TABLE
// ============================================================================

// CellStatus marks how a grid cell ended.
type CellStatus string

const (
	CellEvaluated    CellStatus = "evaluated"
	CellSkipped      CellStatus = "skipped"
	CellNotEvaluated CellStatus = "not_evaluated"
)

// Row is one audit-table entry of the sweep.
type Row struct {
	Params     ParameterSet `json:"params"`
	Status     CellStatus   `json:"status"`
	SkipReason string       `json:"skip_reason,omitempty"`
	Result     *Result      `json:"result,omitempty"`
	Rank       int          `json:"rank,omitempty"`
}

// OptimizationError indicates that no combination survived grid filtering.
type OptimizationError struct {
	Message string
}

func (e *OptimizationError) Error() string {
	return "optimization: " + e.Message
}

// OptimizationResult is the full outcome of a sweep: the winner plus the
// ordered audit table and the counts a caller needs to tell "no good
// strategy" apart from "nothing could be evaluated".
type OptimizationResult struct {
	RunID           uuid.UUID     `json:"run_id"`
	Best            *Row          `json:"best,omitempty"`
	Rows            []Row         `json:"rows"`
	SearchSpaceSize int           `json:"search_space_size"`
	FilteredInvalid int           `json:"filtered_invalid"`
	Evaluated       int           `json:"evaluated"`
	Skipped         int           `json:"skipped"`
	NotEvaluated    int           `json:"not_evaluated"`
	Elapsed         time.Duration `json:"elapsed"`
}

// TopN returns the n best evaluated rows in rank order.
func (r *OptimizationResult) TopN(n int, better SelectionPolicy) []Row {
	evaluated := make([]Row, 0, r.Evaluated)
	for _, row := range r.Rows {
		if row.Status == CellEvaluated {
			evaluated = append(evaluated, row)
		}
	}
	sort.SliceStable(evaluated, func(i, j int) bool {
		return better(evaluated[i].Result, evaluated[j].Result)
	})
	if n > len(evaluated) {
		n = len(evaluated)
	}
	return evaluated[:n]
}

// ============================================================================
// OPTIMIZER
// ============================================================================

// Optimizer sweeps a parameter grid over the indicator, signal and
// simulation layers and selects the best result.
type Optimizer struct {
	spec      IndicatorSpec
	rule      RuleFactory
	sim       *Simulator
	selection SelectionPolicy
	workers   int
	timeout   time.Duration
	maxEvals  int
}

// NewOptimizer creates an optimizer with the default selection policy and
// four workers.
func NewOptimizer(spec IndicatorSpec, rule RuleFactory, sim *Simulator) *Optimizer {
	return &Optimizer{
		spec:      spec,
		rule:      rule,
		sim:       sim,
		selection: BestBySharpe,
		workers:   4,
	}
}

// SetParallelism sets the number of parallel workers.
func (o *Optimizer) SetParallelism(n int) {
	if n >= 1 {
		o.workers = n
	}
}

// SetTimeout sets the wall-clock budget; zero means none.
func (o *Optimizer) SetTimeout(d time.Duration) {
	o.timeout = d
}

// SetMaxEvaluations caps the number of dispatched cells; zero means no cap.
func (o *Optimizer) SetMaxEvaluations(n int) {
	o.maxEvals = n
}

// SetSelectionPolicy replaces the result comparison.
func (o *Optimizer) SetSelectionPolicy(better SelectionPolicy) {
	if better != nil {
		o.selection = better
	}
}

// Optimize sweeps the grid over the series. The series must already be
// validated; a failure confined to one cell becomes a skipped row, while a
// timeout or evaluation cap truncates the sweep and still returns the best
// result found. The winner is identical for any worker count.
func (o *Optimizer) Optimize(ctx context.Context, series *market.Series, grid Grid) (*OptimizationResult, error) {
	start := time.Now()

	if series == nil || !series.Validated() {
		return nil, &market.DataError{Message: "series must be validated before optimization"}
	}

	combos := grid.combinations()
	filtered := make([]ParameterSet, 0, len(combos))
	for _, ps := range combos {
		if grid.keep(ps) {
			filtered = append(filtered, ps)
		}
	}

	if len(filtered) == 0 {
		return nil, &OptimizationError{Message: fmt.Sprintf("no valid combinations in a search space of %d", len(combos))}
	}

	// A rule precondition violated by every cell is an input error. A mixed
	// grid proceeds; its invalid cells become skipped rows.
	var ruleErr error
	validRules := 0
	for _, ps := range filtered {
		rule, err := o.rule(ps)
		if err == nil {
			err = rule.Validate()
		}
		if err != nil {
			if ruleErr == nil {
				ruleErr = err
			}
			continue
		}
		validRules++
	}
	if validRules == 0 {
		return nil, ruleErr
	}

	runID := uuid.New()
	log.Info().
		Str("run_id", runID.String()).
		Int("search_space", len(combos)).
		Int("dispatchable", len(filtered)).
		Int("workers", o.workers).
		Msg("Starting grid sweep")

	cache := o.precompute(series, filtered)

	runCtx := ctx
	var cancel context.CancelFunc
	if o.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	rows := make([]Row, len(filtered))
	for i, ps := range filtered {
		rows[i] = Row{Params: ps, Status: CellNotEvaluated}
	}

	var g errgroup.Group
	g.SetLimit(o.workers)

	dispatched := 0
	for i := range filtered {
		if runCtx.Err() != nil {
			break
		}
		if o.maxEvals > 0 && dispatched >= o.maxEvals {
			break
		}
		dispatched++

		i := i
		g.Go(func() error {
			cellStart := time.Now()
			rows[i] = o.evaluateCell(series, cache, filtered[i])
			metrics.ObserveCell(string(rows[i].Status), time.Since(cellStart))
			return nil
		})
	}

	// Drain in-flight cells; a fired timeout is truncation, not failure.
	_ = g.Wait()

	result := &OptimizationResult{
		RunID:           runID,
		Rows:            rows,
		SearchSpaceSize: len(combos),
		FilteredInvalid: len(combos) - len(filtered),
		Elapsed:         time.Since(start),
	}

	// Reduction runs sequentially in grid order, so the winner does not
	// depend on worker count or completion order.
	for i := range rows {
		switch rows[i].Status {
		case CellEvaluated:
			result.Evaluated++
			if result.Best == nil || o.selection(rows[i].Result, result.Best.Result) {
				result.Best = &rows[i]
			}
		case CellSkipped:
			result.Skipped++
		default:
			result.NotEvaluated++
		}
	}

	ranks := make(map[string]int, result.Evaluated)
	for rank, row := range result.TopN(result.Evaluated, o.selection) {
		ranks[row.Params.Key()] = rank + 1
	}
	for i := range rows {
		if rows[i].Status == CellEvaluated {
			rows[i].Rank = ranks[rows[i].Params.Key()]
		}
	}

	log.Info().
		Str("run_id", runID.String()).
		Int("evaluated", result.Evaluated).
		Int("skipped", result.Skipped).
		Int("not_evaluated", result.NotEvaluated).
		Int("filtered_invalid", result.FilteredInvalid).
		Dur("elapsed", result.Elapsed).
		Msg("Grid sweep complete")

	metrics.ObserveSweep()

	return result, nil
}

// precompute builds one indicator series per distinct cache key. The cache
// is read-only once the fan-out starts.
func (o *Optimizer) precompute(series *market.Series, filtered []ParameterSet) *indicators.Cache {
	cache := indicators.NewCache()
	for _, ps := range filtered {
		key := o.spec.CacheKey(ps)
		if _, ok, _ := cache.Get(key); ok {
			continue
		}
		ind, err := o.spec.Build(ps)
		if err != nil {
			continue // recorded as a skipped row at evaluation time
		}
		cache.Put(key, ind, series)
	}

	log.Debug().Int("entries", cache.Len()).Msg("Indicator cache precomputed")
	return cache
}

// evaluateCell runs one parameter set through indicator, signal and
// simulation. Cell-local failures come back as skipped rows.
func (o *Optimizer) evaluateCell(series *market.Series, cache *indicators.Cache, ps ParameterSet) Row {
	skip := func(reason string) Row {
		return Row{Params: ps, Status: CellSkipped, SkipReason: reason}
	}

	indSeries, ok, cerr := cache.Get(o.spec.CacheKey(ps))
	if !ok {
		ind, err := o.spec.Build(ps)
		if err != nil {
			return skip(err.Error())
		}
		indSeries, cerr = ind.Compute(series)
	}
	if cerr != nil {
		return skip(cerr.Error())
	}

	rule, err := o.rule(ps)
	if err != nil {
		return skip(err.Error())
	}

	signals, err := GenerateSignals(indSeries, rule)
	if err != nil {
		return skip(err.Error())
	}

	result, err := o.sim.Run(series, signals, indSeries.FirstDefined())
	if err != nil {
		return skip(err.Error())
	}
	result.Params = ps

	return Row{Params: ps, Status: CellEvaluated, Result: result}
}
