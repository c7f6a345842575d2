package indicators

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// MFI is the Money Flow Index, a volume-weighted oscillator over typical
// prices.
type MFI struct {
	window int
}

// NewMFI creates a Money Flow Index indicator for the given window.
func NewMFI(window int) (*MFI, error) {
	if window < 1 {
		return nil, &market.ValidationError{Field: "window", Message: fmt.Sprintf("must be >= 1, got %d", window)}
	}
	return &MFI{window: window}, nil
}

func (m *MFI) Name() string {
	return fmt.Sprintf("mfi(%d)", m.window)
}

func (m *MFI) MinBars() int {
	return m.window + 1
}

// Compute calculates the MFI series in [0,100]. Zero negative flow maps to
// 100, a fully flat window to 50.
func (m *MFI) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)

	if n < m.MinBars() {
		return out, &InsufficientDataError{Required: m.MinBars(), Available: n}
	}

	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		bar := s.Bar(i)
		typical[i] = (bar.High + bar.Low + bar.Close) / 3
	}

	// Signed money flow per bar, defined from t=1.
	flow := make([]float64, n)
	for t := 1; t < n; t++ {
		mf := typical[t] * s.Bar(t).Volume
		switch {
		case typical[t] > typical[t-1]:
			flow[t] = mf
		case typical[t] < typical[t-1]:
			flow[t] = -mf
		}
	}

	for t := m.window; t < n; t++ {
		var pos, neg float64
		for i := t - m.window + 1; i <= t; i++ {
			if flow[i] > 0 {
				pos += flow[i]
			} else {
				neg += -flow[i]
			}
		}
		switch {
		case pos == 0 && neg == 0:
			out.Set(t, 50)
		case neg == 0:
			out.Set(t, 100)
		default:
			out.Set(t, 100-100/(1+pos/neg))
		}
	}

	return out, nil
}
