package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/trend"

	"github.com/quantsweep/quantsweep/internal/market"
)

// SMACrossover is the moving-average crossover family. Its value is the
// percentage spread between the fast and slow simple moving averages, so a
// zero crossing marks the crossover itself.
type SMACrossover struct {
	fast int
	slow int
}

// NewSMACrossover creates a crossover indicator. The fast window must be
// strictly shorter than the slow window.
func NewSMACrossover(fast, slow int) (*SMACrossover, error) {
	if fast < 1 {
		return nil, &market.ValidationError{Field: "fast_window", Message: fmt.Sprintf("must be >= 1, got %d", fast)}
	}
	if fast >= slow {
		return nil, &market.ValidationError{Field: "fast_window", Message: fmt.Sprintf("must be less than slow_window (%d >= %d)", fast, slow)}
	}
	return &SMACrossover{fast: fast, slow: slow}, nil
}

func (c *SMACrossover) Name() string {
	return fmt.Sprintf("smacross(%d,%d)", c.fast, c.slow)
}

func (c *SMACrossover) MinBars() int {
	return c.slow
}

// Compute calculates 100*(fastSMA-slowSMA)/slowSMA, defined from the slow
// warmup onward.
func (c *SMACrossover) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < c.MinBars() {
		return out, &InsufficientDataError{Required: c.MinBars(), Available: n}
	}

	fast := collectOne(trend.NewSmaWithPeriod[float64](c.fast).Compute(sliceToChan(s.Closes())))
	slow := collectOne(trend.NewSmaWithPeriod[float64](c.slow).Compute(sliceToChan(s.Closes())))

	// Both outputs are right-aligned with the input; the slow warmup wins.
	for i, v := range slow {
		t := n - len(slow) + i
		f := fast[len(fast)-len(slow)+i]
		out.Set(t, 100*(f-v)/v)
	}

	return out, nil
}

// sliceToChan feeds a price slice into the channel pipeline cinar indicators
// consume.
func sliceToChan(values []float64) chan float64 {
	ch := make(chan float64, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return ch
}

func collectOne(ch <-chan float64) []float64 {
	var out []float64
	for v := range ch {
		out = append(out, v)
	}
	return out
}
