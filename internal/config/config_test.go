package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quantsweep", cfg.App.Name)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.True(t, cfg.Data.Strict)
	assert.Equal(t, "rsi", cfg.Indicator.Family)
	assert.False(t, cfg.Simulator.AllowShort)
	assert.Equal(t, "two", cfg.Simulator.ReversalPolicy)
	assert.Equal(t, 4, cfg.Optimizer.Workers)
	assert.Equal(t, time.Duration(0), cfg.Optimizer.Timeout)
	assert.Equal(t, 0, cfg.Optimizer.MaxEvaluations)
	assert.Equal(t, "reports", cfg.Output.Dir)
	assert.Equal(t, 10, cfg.Output.TopN)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
app:
  log_level: debug
data:
  path: prices.csv
  strict: false
indicator:
  family: macd
  ranges:
    fast_window:
      min: 8
      max: 16
      step: 4
    slow_window:
      min: 20
      max: 30
      step: 5
simulator:
  allow_short: true
  reversal_policy: one
optimizer:
  workers: 8
  timeout: 2m
  max_evaluations: 100
output:
  dir: out
  top_n: 5
`
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "prices.csv", cfg.Data.Path)
	assert.False(t, cfg.Data.Strict)
	assert.Equal(t, "macd", cfg.Indicator.Family)
	assert.True(t, cfg.Simulator.AllowShort)
	assert.Equal(t, "one", cfg.Simulator.ReversalPolicy)
	assert.Equal(t, 8, cfg.Optimizer.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Optimizer.Timeout)
	assert.Equal(t, 100, cfg.Optimizer.MaxEvaluations)
	assert.Equal(t, 5, cfg.Output.TopN)

	require.Len(t, cfg.Indicator.Ranges, 2)
	fast := cfg.Indicator.Ranges["fast_window"]
	assert.Equal(t, 8.0, fast.Min)
	assert.Equal(t, 16.0, fast.Max)
	assert.Equal(t, 4.0, fast.Step)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Simulator: SimulatorConfig{ReversalPolicy: "two"},
			Optimizer: OptimizerConfig{Workers: 4},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Optimizer.Workers = 0 }},
		{"negative max evaluations", func(c *Config) { c.Optimizer.MaxEvaluations = -1 }},
		{"bad reversal policy", func(c *Config) { c.Simulator.ReversalPolicy = "three" }},
		{"inverted range", func(c *Config) {
			c.Indicator.Ranges = map[string]RangeConfig{"window": {Min: 20, Max: 10, Step: 1}}
		}},
		{"negative step", func(c *Config) {
			c.Indicator.Ranges = map[string]RangeConfig{"window": {Min: 5, Max: 10, Step: -1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
