package backtest

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/indicators"
	"github.com/quantsweep/quantsweep/internal/market"
)

// Family bundles everything the optimizer needs for one indicator family:
// how to build the indicator from a parameter set, how to signal it, and
// which structural constraints its grid carries.
type Family struct {
	Name        string
	Spec        IndicatorSpec
	Rule        RuleFactory
	Constraints []Constraint
}

// FamilyByName resolves a registered indicator family.
func FamilyByName(name string) (Family, error) {
	f, ok := families[name]
	if !ok {
		return Family{}, &market.ValidationError{Field: "indicator", Message: fmt.Sprintf("unknown family %q", name)}
	}
	return f, nil
}

// FamilyNames lists the registered families.
func FamilyNames() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	return names
}

func thresholdRule(ps ParameterSet) (SignalRule, error) {
	return ThresholdRule{BuyBelow: ps.Float("buy_threshold"), SellAbove: ps.Float("sell_threshold")}, nil
}

func crossRule(ParameterSet) (SignalRule, error) {
	return CrossRule{}, nil
}

func intOr(ps ParameterSet, name string, fallback int) int {
	if _, ok := ps[name]; ok {
		return ps.Int(name)
	}
	return fallback
}

func floatOr(ps ParameterSet, name string, fallback float64) float64 {
	if _, ok := ps[name]; ok {
		return ps.Float(name)
	}
	return fallback
}

var families = map[string]Family{
	"rsi": {
		Name: "rsi",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewRSI(ps.Int("window"))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("rsi:%d", ps.Int("window"))
			},
		},
		Rule:        thresholdRule,
		Constraints: []Constraint{ThresholdOrdering},
	},
	"stoch": {
		Name: "stoch",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewStochastic(ps.Int("window"), intOr(ps, "smooth", 3))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("stoch:%d:%d", ps.Int("window"), intOr(ps, "smooth", 3))
			},
		},
		Rule:        thresholdRule,
		Constraints: []Constraint{ThresholdOrdering},
	},
	"willr": {
		Name: "willr",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewWilliamsR(ps.Int("window"))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("willr:%d", ps.Int("window"))
			},
		},
		Rule:        thresholdRule,
		Constraints: []Constraint{ThresholdOrdering},
	},
	"mfi": {
		Name: "mfi",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewMFI(ps.Int("window"))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("mfi:%d", ps.Int("window"))
			},
		},
		Rule:        thresholdRule,
		Constraints: []Constraint{ThresholdOrdering},
	},
	"bbpct": {
		Name: "bbpct",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewBollingerPercentB(ps.Int("window"), floatOr(ps, "std_dev", 2))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("bbpct:%d:%g", ps.Int("window"), floatOr(ps, "std_dev", 2))
			},
		},
		Rule:        thresholdRule,
		Constraints: []Constraint{ThresholdOrdering},
	},
	"smacross": {
		Name: "smacross",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewSMACrossover(ps.Int("fast_window"), ps.Int("slow_window"))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("smacross:%d:%d", ps.Int("fast_window"), ps.Int("slow_window"))
			},
		},
		Rule:        crossRule,
		Constraints: []Constraint{WindowOrdering},
	},
	"macd": {
		Name: "macd",
		Spec: IndicatorSpec{
			Build: func(ps ParameterSet) (indicators.Indicator, error) {
				return indicators.NewMACD(ps.Int("fast_window"), ps.Int("slow_window"), intOr(ps, "signal_window", 9))
			},
			CacheKey: func(ps ParameterSet) string {
				return fmt.Sprintf("macd:%d:%d:%d", ps.Int("fast_window"), ps.Int("slow_window"), intOr(ps, "signal_window", 9))
			},
		},
		Rule:        crossRule,
		Constraints: []Constraint{WindowOrdering},
	},
}
