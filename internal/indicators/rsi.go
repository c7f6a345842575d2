package indicators

import (
	"fmt"

	"github.com/quantsweep/quantsweep/internal/market"
)

// RSI is the Relative Strength Index with Wilder smoothing. The running
// averages are seeded with a simple average of the first window gains and
// losses, then updated with the (w-1)/w recurrence in a single forward pass.
type RSI struct {
	window int
}

// NewRSI creates an RSI indicator for the given window.
func NewRSI(window int) (*RSI, error) {
	if window < 1 {
		return nil, &market.ValidationError{Field: "window", Message: fmt.Sprintf("must be >= 1, got %d", window)}
	}
	return &RSI{window: window}, nil
}

func (r *RSI) Name() string {
	return fmt.Sprintf("rsi(%d)", r.window)
}

// MinBars returns the minimum series length for a defined value: window
// deltas need window+1 closes.
func (r *RSI) MinBars() int {
	return r.window + 1
}

// Compute calculates the RSI series. Values at t < window are Undefined. A
// zero average loss yields exactly 100, and a flat stretch (zero gain and
// zero loss) yields exactly 50; no NaN or Inf can escape.
func (r *RSI) Compute(s *market.Series) (*Series, error) {
	n := s.Len()
	out := NewSeries(n)
	w := r.window

	if n < r.MinBars() {
		return out, &InsufficientDataError{Required: r.MinBars(), Available: n}
	}

	closes := s.Closes()

	// Seed with the simple average of the first w gains/losses.
	var avgGain, avgLoss float64
	for t := 1; t <= w; t++ {
		delta := closes[t] - closes[t-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(w)
	avgLoss /= float64(w)
	out.Set(w, rsiValue(avgGain, avgLoss))

	fw := float64(w)
	for t := w + 1; t < n; t++ {
		delta := closes[t] - closes[t-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = avgGain*(fw-1)/fw + gain/fw
		avgLoss = avgLoss*(fw-1)/fw + loss/fw
		out.Set(t, rsiValue(avgGain, avgLoss))
	}

	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
