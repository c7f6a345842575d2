package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantsweep/quantsweep/internal/config"
	"github.com/quantsweep/quantsweep/pkg/backtest"
)

func TestApplyOverrides(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	*dataPath = "prices.csv"
	*family = "macd"
	*workers = 12
	*timeout = 30 * time.Second
	*outputDir = "out"
	t.Cleanup(func() {
		*dataPath, *family, *outputDir = "", "", ""
		*workers, *timeout = 0, 0
	})

	applyOverrides(cfg)

	assert.Equal(t, "prices.csv", cfg.Data.Path)
	assert.Equal(t, "macd", cfg.Indicator.Family)
	assert.Equal(t, 12, cfg.Optimizer.Workers)
	assert.Equal(t, 30*time.Second, cfg.Optimizer.Timeout)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestApplyOverrides_ZeroValuesKeepConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Optimizer.Workers = 6

	applyOverrides(cfg)

	assert.Equal(t, 6, cfg.Optimizer.Workers, "unset flags do not override")
	assert.Equal(t, "rsi", cfg.Indicator.Family)
}

func TestSortRanges(t *testing.T) {
	ranges := []backtest.ParamRange{
		{Name: "window"},
		{Name: "buy_threshold"},
		{Name: "sell_threshold"},
	}
	sortRanges(ranges)

	assert.Equal(t, "buy_threshold", ranges[0].Name)
	assert.Equal(t, "sell_threshold", ranges[1].Name)
	assert.Equal(t, "window", ranges[2].Name)
}
