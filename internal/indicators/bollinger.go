package indicators

import (
	"fmt"
	"math"

	"github.com/quantsweep/quantsweep/internal/market"
)

// BollingerPercentB expresses the close position inside Bollinger bands as
// an oscillator: 0 at the lower band, 100 at the upper band. Values can
// exceed the band edges during strong moves.
type BollingerPercentB struct {
	window int
	stdDev float64
}

// NewBollingerPercentB creates a %B indicator with the given window and band
// width in standard deviations.
func NewBollingerPercentB(window int, stdDev float64) (*BollingerPercentB, error) {
	if window < 2 {
		return nil, &market.ValidationError{Field: "window", Message: fmt.Sprintf("must be >= 2, got %d", window)}
	}
	if stdDev <= 0 {
		return nil, &market.ValidationError{Field: "std_dev", Message: fmt.Sprintf("must be positive, got %g", stdDev)}
	}
	return &BollingerPercentB{window: window, stdDev: stdDev}, nil
}

func (b *BollingerPercentB) Name() string {
	return fmt.Sprintf("bbpct(%d,%g)", b.window, b.stdDev)
}

func (b *BollingerPercentB) MinBars() int {
	return b.window
}

// Compute calculates the %B series. A zero-variance window maps to 50.
func (b *BollingerPercentB) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < b.MinBars() {
		return out, &InsufficientDataError{Required: b.MinBars(), Available: n}
	}

	closes := s.Closes()
	w := float64(b.window)

	for t := b.window - 1; t < n; t++ {
		var sum float64
		for i := t - b.window + 1; i <= t; i++ {
			sum += closes[i]
		}
		mean := sum / w

		var sq float64
		for i := t - b.window + 1; i <= t; i++ {
			d := closes[i] - mean
			sq += d * d
		}
		sd := math.Sqrt(sq / w)

		if sd == 0 {
			out.Set(t, 50)
			continue
		}
		lower := mean - b.stdDev*sd
		width := 2 * b.stdDev * sd
		out.Set(t, 100*(closes[t]-lower)/width)
	}

	return out, nil
}
