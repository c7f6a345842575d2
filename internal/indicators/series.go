// Package indicators computes technical indicator series over a validated
// price history. Every family conforms to the same contract: a single
// canonical Compute pass producing a Series index-aligned with the input,
// with an explicit Undefined warmup that can never leak into arithmetic as
// NaN.
package indicators

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// Series is an indicator value sequence, one entry per price bar. Entries
// before the warmup point are Undefined; At reports definedness explicitly
// instead of encoding it as a sentinel float.
type Series struct {
	values  []float64
	defined []bool
}

// NewSeries creates a fully-Undefined series of length n.
func NewSeries(n int) *Series {
	return &Series{
		values:  make([]float64, n),
		defined: make([]bool, n),
	}
}

// Len returns the series length.
func (s *Series) Len() int {
	return len(s.values)
}

// At returns the value at index i and whether it is defined.
func (s *Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) {
		return 0, false
	}
	return s.values[i], s.defined[i]
}

// Set defines the value at index i.
func (s *Series) Set(i int, v float64) {
	s.values[i] = v
	s.defined[i] = true
}

// FirstDefined returns the index of the first defined entry, or -1 when the
// series is fully Undefined.
func (s *Series) FirstDefined() int {
	for i, d := range s.defined {
		if d {
			return i
		}
	}
	return -1
}

// DefinedCount returns the number of defined entries.
func (s *Series) DefinedCount() int {
	n := 0
	for _, d := range s.defined {
		if d {
			n++
		}
	}
	return n
}

// Indicator is the capability contract every family implements. Compute is a
// pure function of the series and the parameters bound at construction; the
// result is aligned by index with the input.
//
// When the series is shorter than the warmup requires, Compute returns a
// fully-Undefined series together with an *InsufficientDataError. That is
// non-fatal at this layer; the optimizer records it as a skipped cell.
type Indicator interface {
	Name() string
	MinBars() int
	Compute(s *market.Series) (*Series, error)
}

// InsufficientDataError reports that a series has fewer bars than an
// indicator's warmup needs.
type InsufficientDataError struct {
	Required  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: required %d bars, have %d", e.Required, e.Available)
}
