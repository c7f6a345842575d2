// Package config loads sweep configuration from YAML files and environment
// variables and initializes the global logger.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all sweep configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Data      DataConfig      `mapstructure:"data"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Output    OutputConfig    `mapstructure:"output"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// DataConfig locates the price history input
type DataConfig struct {
	Path   string `mapstructure:"path"`
	Strict bool   `mapstructure:"strict"`
}

// RangeConfig is a numeric parameter range for the grid
type RangeConfig struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Step float64 `mapstructure:"step"`
}

// IndicatorConfig selects the family and its parameter ranges
type IndicatorConfig struct {
	Family string                 `mapstructure:"family"`
	Ranges map[string]RangeConfig `mapstructure:"ranges"`
}

// SimulatorConfig controls the simulation semantics
type SimulatorConfig struct {
	AllowShort     bool   `mapstructure:"allow_short"`
	ReversalPolicy string `mapstructure:"reversal_policy"` // "two" or "one"
}

// OptimizerConfig controls the sweep execution
type OptimizerConfig struct {
	Workers        int           `mapstructure:"workers"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxEvaluations int           `mapstructure:"max_evaluations"`
}

// OutputConfig controls report generation
type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	TopN int    `mapstructure:"top_n"`
}

// Load reads configuration from the given file (optional), environment
// variables prefixed with QUANTSWEEP_, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUANTSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quantsweep")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_json", false)

	v.SetDefault("data.strict", true)

	v.SetDefault("indicator.family", "rsi")

	v.SetDefault("simulator.allow_short", false)
	v.SetDefault("simulator.reversal_policy", "two")

	v.SetDefault("optimizer.workers", 4)
	v.SetDefault("optimizer.timeout", 0)
	v.SetDefault("optimizer.max_evaluations", 0)

	v.SetDefault("output.dir", "reports")
	v.SetDefault("output.top_n", 10)
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Optimizer.Workers < 1 {
		return fmt.Errorf("optimizer.workers must be >= 1, got %d", c.Optimizer.Workers)
	}
	if c.Optimizer.MaxEvaluations < 0 {
		return fmt.Errorf("optimizer.max_evaluations must be >= 0, got %d", c.Optimizer.MaxEvaluations)
	}
	switch c.Simulator.ReversalPolicy {
	case "", "one", "two":
	default:
		return fmt.Errorf("simulator.reversal_policy must be \"one\" or \"two\", got %q", c.Simulator.ReversalPolicy)
	}
	for name, r := range c.Indicator.Ranges {
		if r.Max < r.Min {
			return fmt.Errorf("indicator.ranges.%s: max %g below min %g", name, r.Max, r.Min)
		}
		if r.Step < 0 {
			return fmt.Errorf("indicator.ranges.%s: step must be >= 0, got %g", name, r.Step)
		}
	}
	return nil
}
