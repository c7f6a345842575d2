package indicators

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// Stochastic is the slow stochastic oscillator: raw %K over a lookback
// window, smoothed with a simple moving average.
type Stochastic struct {
	window int
	smooth int
}

// NewStochastic creates a stochastic oscillator with the given lookback
// window and %K smoothing length.
func NewStochastic(window, smooth int) (*Stochastic, error) {
	if window < 1 {
		return nil, &market.ValidationError{Field: "window", Message: fmt.Sprintf("must be >= 1, got %d", window)}
	}
	if smooth < 1 {
		return nil, &market.ValidationError{Field: "smooth", Message: fmt.Sprintf("must be >= 1, got %d", smooth)}
	}
	return &Stochastic{window: window, smooth: smooth}, nil
}

func (st *Stochastic) Name() string {
	return fmt.Sprintf("stoch(%d,%d)", st.window, st.smooth)
}

func (st *Stochastic) MinBars() int {
	return st.window + st.smooth - 1
}

// Compute calculates the smoothed %K series in [0,100]. A zero high-low
// range maps to 50.
func (st *Stochastic) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < st.MinBars() {
		return out, &InsufficientDataError{Required: st.MinBars(), Available: n}
	}

	raw := make([]float64, n)
	for t := st.window - 1; t < n; t++ {
		hi, lo := s.Bar(t).High, s.Bar(t).Low
		for i := t - st.window + 1; i <= t; i++ {
			if h := s.Bar(i).High; h > hi {
				hi = h
			}
			if l := s.Bar(i).Low; l < lo {
				lo = l
			}
		}
		if hi == lo {
			raw[t] = 50
		} else {
			raw[t] = 100 * (s.Bar(t).Close - lo) / (hi - lo)
		}
	}

	first := st.window - 1 + st.smooth - 1
	for t := first; t < n; t++ {
		sum := 0.0
		for i := t - st.smooth + 1; i <= t; i++ {
			sum += raw[i]
		}
		out.Set(t, sum/float64(st.smooth))
	}

	return out, nil
}
