// Package backtest simulates single-position trading strategies over a
// validated price series and searches indicator parameter grids for the
// best-scoring configuration.
package backtest

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/indicators"
	"github.com/quantsweep/quantsweep/internal/market"
)

// Signal is a per-bar trading decision.
type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// SignalRule maps one indicator value to a signal. Undefined values never
// reach Apply; they are always Hold.
type SignalRule interface {
	Validate() error
	Apply(value float64) Signal
}

// ThresholdRule is the oscillator rule: BUY below the buy threshold, SELL
// above the sell threshold, HOLD between them.
type ThresholdRule struct {
	BuyBelow  float64
	SellAbove float64
}

// Validate enforces 0 <= buy < sell <= 100.
func (r ThresholdRule) Validate() error {
	if r.BuyBelow < 0 || r.SellAbove > 100 || r.BuyBelow >= r.SellAbove {
		return &market.ValidationError{
			Field:   "thresholds",
			Message: fmt.Sprintf("require 0 <= buy < sell <= 100, got buy=%g sell=%g", r.BuyBelow, r.SellAbove),
		}
	}
	return nil
}

func (r ThresholdRule) Apply(value float64) Signal {
	switch {
	case value < r.BuyBelow:
		return Buy
	case value > r.SellAbove:
		return Sell
	default:
		return Hold
	}
}

// CrossRule is the spread rule for zero-centered families such as the SMA
// crossover and the MACD histogram: BUY above zero, SELL below.
type CrossRule struct{}

func (CrossRule) Validate() error {
	return nil
}

func (CrossRule) Apply(value float64) Signal {
	switch {
	case value > 0:
		return Buy
	case value < 0:
		return Sell
	default:
		return Hold
	}
}

// GenerateSignals maps an indicator series to a signal per bar. The rule is
// validated before any computation; a violated precondition returns a
// *market.ValidationError and a nil series.
func GenerateSignals(ind *indicators.Series, rule SignalRule) ([]Signal, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	signals := make([]Signal, ind.Len())
	for t := 0; t < ind.Len(); t++ {
		value, defined := ind.At(t)
		if !defined {
			signals[t] = Hold
			continue
		}
		signals[t] = rule.Apply(value)
	}

	return signals, nil
}
