package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMACrossover_Validation(t *testing.T) {
	_, err := NewSMACrossover(0, 10)
	assert.Error(t, err)

	_, err = NewSMACrossover(10, 10)
	assert.Error(t, err)

	_, err = NewSMACrossover(20, 10)
	assert.Error(t, err)

	c, err := NewSMACrossover(5, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, c.MinBars())
	assert.Equal(t, "smacross(5,20)", c.Name())
}

func TestSMACrossover_LinearTrend(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	c, err := NewSMACrossover(2, 3)
	require.NoError(t, err)

	out, err := c.Compute(seriesFromCloses(closes))
	require.NoError(t, err)
	require.Equal(t, 10, out.Len())
	assert.GreaterOrEqual(t, out.FirstDefined(), 2, "slow warmup")

	// On a rising linear series the fast SMA leads the slow one, so every
	// defined value is positive. At the last bar the averages are exactly
	// 9.5 and 9: spread 100*0.5/9.
	for i := out.FirstDefined(); i < out.Len(); i++ {
		v, defined := out.At(i)
		require.True(t, defined)
		assert.Positive(t, v)
	}
	last, defined := out.At(9)
	require.True(t, defined)
	assert.InDelta(t, 100*0.5/9, last, 1e-9)
}

func TestSMACrossover_DowntrendIsNegative(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	c, err := NewSMACrossover(3, 6)
	require.NoError(t, err)

	out, err := c.Compute(seriesFromCloses(closes))
	require.NoError(t, err)

	v, defined := out.At(14)
	require.True(t, defined)
	assert.Negative(t, v)
}

func TestSMACrossover_InsufficientData(t *testing.T) {
	c, err := NewSMACrossover(5, 50)
	require.NoError(t, err)

	out, err := c.Compute(seriesFromCloses([]float64{1, 2, 3}))
	require.Error(t, err)

	var insuffErr *InsufficientDataError
	require.True(t, errors.As(err, &insuffErr))
	assert.Equal(t, 50, insuffErr.Required)
	assert.Equal(t, -1, out.FirstDefined())
}

func TestNewMACD_Validation(t *testing.T) {
	_, err := NewMACD(0, 26, 9)
	assert.Error(t, err)

	_, err = NewMACD(26, 12, 9)
	assert.Error(t, err)

	_, err = NewMACD(12, 26, 0)
	assert.Error(t, err)

	m, err := NewMACD(12, 26, 9)
	require.NoError(t, err)
	assert.Equal(t, 35, m.MinBars())
}

func TestMACD_Histogram(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		// Rising trend with a mild oscillation so the histogram changes sign.
		closes[i] = 100 + 0.5*float64(i) + 5*math.Sin(float64(i)/4)
	}
	m, err := NewMACD(5, 12, 4)
	require.NoError(t, err)

	out, err := m.Compute(seriesFromCloses(closes))
	require.NoError(t, err)
	require.Equal(t, 80, out.Len())
	assert.Greater(t, out.DefinedCount(), 0)

	sawPositive, sawNegative := false, false
	for i := 0; i < out.Len(); i++ {
		v, defined := out.At(i)
		if !defined {
			continue
		}
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		if v > 0 {
			sawPositive = true
		}
		if v < 0 {
			sawNegative = true
		}
	}
	assert.True(t, sawPositive, "oscillating series should cross above the signal line")
	assert.True(t, sawNegative, "oscillating series should cross below the signal line")
}

func TestMACD_InsufficientData(t *testing.T) {
	m, err := NewMACD(12, 26, 9)
	require.NoError(t, err)

	out, err := m.Compute(seriesFromCloses(make([]float64, 10)))
	require.Error(t, err)

	var insuffErr *InsufficientDataError
	require.True(t, errors.As(err, &insuffErr))
	assert.Equal(t, 35, insuffErr.Required)
	assert.Equal(t, 10, insuffErr.Available)
	assert.Equal(t, -1, out.FirstDefined())
}

func TestSliceToChan_RoundTrip(t *testing.T) {
	values := []float64{1.5, 2.5, 3.5}
	out := collectOne(sliceToChan(values))
	assert.Equal(t, values, out)

	assert.Nil(t, collectOne(sliceToChan(nil)))
}

func TestIndicatorContract(t *testing.T) {
	// Every family reports a positive warmup requirement.
	build := []func() (Indicator, error){
		func() (Indicator, error) { return NewRSI(14) },
		func() (Indicator, error) { return NewStochastic(14, 3) },
		func() (Indicator, error) { return NewWilliamsR(14) },
		func() (Indicator, error) { return NewMFI(14) },
		func() (Indicator, error) { return NewBollingerPercentB(20, 2) },
		func() (Indicator, error) { return NewSMACrossover(10, 30) },
		func() (Indicator, error) { return NewMACD(12, 26, 9) },
	}
	for _, b := range build {
		ind, err := b()
		require.NoError(t, err)
		assert.Positive(t, ind.MinBars(), ind.Name())
		assert.NotEmpty(t, ind.Name())
	}
}

func TestInsufficientDataError_Message(t *testing.T) {
	err := &InsufficientDataError{Required: 15, Available: 3}
	assert.Equal(t, "insufficient data: required 15 bars, have 3", err.Error())
}
