// Package metrics exposes Prometheus instrumentation for parameter sweeps.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cell outcome labels (bounded set, mirrors backtest.CellStatus).
const (
	OutcomeEvaluated    = "evaluated"
	OutcomeSkipped      = "skipped"
	OutcomeNotEvaluated = "not_evaluated"
)

var (
	cellsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantsweep",
		Subsystem: "optimizer",
		Name:      "cells_total",
		Help:      "Grid cells processed, by outcome",
	}, []string{"outcome"})

	cellDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantsweep",
		Subsystem: "optimizer",
		Name:      "cell_duration_seconds",
		Help:      "Wall-clock duration of a single cell evaluation",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantsweep",
		Subsystem: "optimizer",
		Name:      "sweeps_total",
		Help:      "Completed optimization sweeps",
	})
)

// ObserveCell records one processed grid cell.
func ObserveCell(outcome string, elapsed time.Duration) {
	switch outcome {
	case OutcomeEvaluated, OutcomeSkipped, OutcomeNotEvaluated:
	default:
		outcome = OutcomeNotEvaluated
	}
	cellsTotal.WithLabelValues(outcome).Inc()
	cellDuration.Observe(elapsed.Seconds())
}

// ObserveSweep records a completed sweep.
func ObserveSweep() {
	sweepsTotal.Inc()
}
