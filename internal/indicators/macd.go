package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/trend"

	"github.com/quantsweep/quantsweep/internal/market"
)

// MACD is the Moving Average Convergence Divergence family. Its value is the
// histogram (MACD line minus signal line), another zero-crossing spread.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a MACD indicator. The fast period must be strictly shorter
// than the slow period.
func NewMACD(fast, slow, signal int) (*MACD, error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return nil, &market.ValidationError{Field: "period", Message: fmt.Sprintf("periods must be >= 1, got fast=%d slow=%d signal=%d", fast, slow, signal)}
	}
	if fast >= slow {
		return nil, &market.ValidationError{Field: "fast_window", Message: fmt.Sprintf("must be less than slow_window (%d >= %d)", fast, slow)}
	}
	return &MACD{fast: fast, slow: slow, signal: signal}, nil
}

func (m *MACD) Name() string {
	return fmt.Sprintf("macd(%d,%d,%d)", m.fast, m.slow, m.signal)
}

func (m *MACD) MinBars() int {
	return m.slow + m.signal
}

// Compute calculates the MACD histogram series, defined once both the MACD
// and signal lines have warmed up.
func (m *MACD) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < m.MinBars() {
		return out, &InsufficientDataError{Required: m.MinBars(), Available: n}
	}

	macdChan, signalChan := trend.NewMacdWithPeriod[float64](m.fast, m.slow, m.signal).Compute(sliceToChan(s.Closes()))

	var hist []float64
	for {
		macd, mok := <-macdChan
		sig, sok := <-signalChan
		if !mok || !sok {
			break
		}
		hist = append(hist, macd-sig)
	}

	if len(hist) == 0 {
		return out, &InsufficientDataError{Required: m.MinBars(), Available: n}
	}

	for i, v := range hist {
		out.Set(n-len(hist)+i, v)
	}

	return out, nil
}
