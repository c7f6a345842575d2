// Parameter Sweep CLI
// Runs an indicator parameter-grid optimization over a CSV price history
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantsweep/quantsweep/internal/config"
	"github.com/quantsweep/quantsweep/internal/market"
	"github.com/quantsweep/quantsweep/internal/metrics"
	"github.com/quantsweep/quantsweep/pkg/backtest"
)

// Exit codes distinguish input problems from an empty search space.
const (
	exitOK            = 0
	exitInvalidInput  = 1
	exitMissingInput  = 2
	exitEmptySearch   = 3
	exitInternalError = 4
)

var (
	configPath = flag.String("config", "", "Path to sweep config file (YAML)")
	dataPath   = flag.String("data", "", "Path to CSV price history (overrides config)")
	family     = flag.String("indicator", "", "Indicator family (overrides config)")
	workers    = flag.Int("workers", 0, "Worker count (overrides config)")
	timeout    = flag.Duration("timeout", 0, "Sweep timeout (overrides config)")
	outputDir  = flag.String("out", "", "Report output directory (overrides config)")
	metricsAdr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address during the sweep (e.g. :9090)")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitInvalidInput
	}
	applyOverrides(cfg)

	level := cfg.App.LogLevel
	if *verbose {
		level = "debug"
	}
	config.InitLogger(level, cfg.App.LogJSON)

	if cfg.Data.Path == "" {
		fmt.Fprintln(os.Stderr, "Error: -data or data.path is required")
		flag.Usage()
		return exitMissingInput
	}

	series, err := market.LoadCSV(cfg.Data.Path)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Data.Path).Msg("Failed to load price history")
		return exitMissingInput
	}

	valid, warnings, err := market.NewValidator().Validate(series, cfg.Data.Strict)
	for _, w := range warnings {
		log.Warn().Str("warning", w).Msg("Validation warning")
	}
	if err != nil {
		log.Error().Err(err).Msg("Price series rejected")
		return exitInvalidInput
	}
	if !valid {
		log.Error().Int("warnings", len(warnings)).Msg("Price series invalid")
		return exitInvalidInput
	}

	if *metricsAdr != "" {
		mux := http.NewServeMux()
		metrics.RegisterHandlers(mux)
		go func() {
			log.Info().Str("addr", *metricsAdr).Msg("Serving metrics")
			if err := http.ListenAndServe(*metricsAdr, mux); err != nil {
				log.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	result, fam, err := runSweep(cfg, series)
	if err != nil {
		var optErr *backtest.OptimizationError
		if errors.As(err, &optErr) {
			log.Error().Err(err).Msg("Empty search space")
			return exitEmptySearch
		}
		var valErr *market.ValidationError
		if errors.As(err, &valErr) {
			log.Error().Err(err).Msg("Invalid sweep parameters")
			return exitInvalidInput
		}
		log.Error().Err(err).Msg("Sweep failed")
		return exitInternalError
	}

	reporter := backtest.NewReporter(result, fam)
	reporter.SetTopN(cfg.Output.TopN)
	fmt.Println(reporter.RenderConsole())

	if cfg.Output.Dir != "" {
		if err := reporter.SaveAll(cfg.Output.Dir); err != nil {
			log.Error().Err(err).Msg("Failed to write reports")
			return exitInternalError
		}
	}

	return exitOK
}

func applyOverrides(cfg *config.Config) {
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *family != "" {
		cfg.Indicator.Family = *family
	}
	if *workers > 0 {
		cfg.Optimizer.Workers = *workers
	}
	if *timeout > 0 {
		cfg.Optimizer.Timeout = *timeout
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
}

func runSweep(cfg *config.Config, series *market.Series) (*backtest.OptimizationResult, string, error) {
	fam, err := backtest.FamilyByName(cfg.Indicator.Family)
	if err != nil {
		return nil, "", err
	}

	grid := backtest.Grid{Constraints: fam.Constraints}
	for name, r := range cfg.Indicator.Ranges {
		grid.Ranges = append(grid.Ranges, backtest.ParamRange{Name: name, Min: r.Min, Max: r.Max, Step: r.Step})
	}
	sortRanges(grid.Ranges)

	sim := backtest.NewSimulator(backtest.SimConfig{
		AllowShort: cfg.Simulator.AllowShort,
		Reversals:  backtest.ReversalPolicy(cfg.Simulator.ReversalPolicy),
	})

	opt := backtest.NewOptimizer(fam.Spec, fam.Rule, sim)
	opt.SetParallelism(cfg.Optimizer.Workers)
	opt.SetTimeout(cfg.Optimizer.Timeout)
	opt.SetMaxEvaluations(cfg.Optimizer.MaxEvaluations)

	logger := config.NewLogger("sweep")
	logger.Info().
		Str("family", fam.Name).
		Int("ranges", len(grid.Ranges)).
		Int("bars", series.Len()).
		Msg("Starting sweep")

	start := time.Now()
	result, err := opt.Optimize(context.Background(), series, grid)
	if err != nil {
		return nil, "", err
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("evaluated", result.Evaluated).
		Msg("Sweep finished")

	return result, fam.Name, nil
}

// sortRanges keeps grid enumeration order stable across runs regardless of
// map iteration order in the config.
func sortRanges(ranges []backtest.ParamRange) {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Name < ranges[j].Name })
}
