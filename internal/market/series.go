// Package market defines the validated price-series input contract shared
// by the indicator engine, the simulator and the optimizer.
package market

import (
	"fmt"
	"time"
)

// Bar represents OHLCV data for a single time period
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered price history. It is built once, run through the
// Validator, and afterwards shared read-only by every downstream component.
type Series struct {
	bars      []Bar
	closes    []float64
	validated bool
}

// NewSeries creates a series from a slice of bars. The slice is copied so the
// caller cannot mutate the series afterwards.
func NewSeries(bars []Bar) *Series {
	copied := make([]Bar, len(bars))
	copy(copied, bars)

	closes := make([]float64, len(copied))
	for i, b := range copied {
		closes[i] = b.Close
	}

	return &Series{bars: copied, closes: closes}
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i.
func (s *Series) Bar(i int) Bar {
	return s.bars[i]
}

// Closes returns the close prices aligned by index with the series. The
// returned slice is shared; callers must not modify it.
func (s *Series) Closes() []float64 {
	return s.closes
}

// Validated reports whether the series has passed validation.
func (s *Series) Validated() bool {
	return s.validated
}

// DataError indicates malformed or missing input data.
type DataError struct {
	Message string
}

func (e *DataError) Error() string {
	return "data error: " + e.Message
}

// ValidationError indicates a schema, ordering or relationship violation in
// the input, or an invalid parameter combination further downstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
