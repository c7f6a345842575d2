package indicators

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// WilliamsR is Williams %R shifted from its native [-100,0] range onto
// [0,100] so it shares the oscillator threshold contract: 100 at the rolling
// high, 0 at the rolling low.
type WilliamsR struct {
	window int
}

// NewWilliamsR creates a Williams %R indicator for the given lookback window.
func NewWilliamsR(window int) (*WilliamsR, error) {
	if window < 1 {
		return nil, &market.ValidationError{Field: "window", Message: fmt.Sprintf("must be >= 1, got %d", window)}
	}
	return &WilliamsR{window: window}, nil
}

func (w *WilliamsR) Name() string {
	return fmt.Sprintf("willr(%d)", w.window)
}

func (w *WilliamsR) MinBars() int {
	return w.window
}

// Compute calculates the shifted %R series in [0,100]. A zero high-low range
// maps to 50.
func (w *WilliamsR) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < w.MinBars() {
		return out, &InsufficientDataError{Required: w.MinBars(), Available: n}
	}

	for t := w.window - 1; t < n; t++ {
		hi, lo := s.Bar(t).High, s.Bar(t).Low
		for i := t - w.window + 1; i <= t; i++ {
			if h := s.Bar(i).High; h > hi {
				hi = h
			}
			if l := s.Bar(i).Low; l < lo {
				lo = l
			}
		}
		if hi == lo {
			out.Set(t, 50)
			continue
		}
		out.Set(t, 100*(s.Bar(t).Close-lo)/(hi-lo))
	}

	return out, nil
}
