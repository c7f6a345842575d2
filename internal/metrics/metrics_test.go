package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSweep(t *testing.T) {
	before := testutil.ToFloat64(sweepsTotal)
	ObserveSweep()
	assert.Equal(t, before+1, testutil.ToFloat64(sweepsTotal))
}

func TestObserveCell(t *testing.T) {
	before := testutil.ToFloat64(cellsTotal.WithLabelValues(OutcomeEvaluated))
	ObserveCell(OutcomeEvaluated, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(cellsTotal.WithLabelValues(OutcomeEvaluated)))
}

func TestObserveCell_UnknownOutcome(t *testing.T) {
	// An unrecognized label folds into not_evaluated instead of growing the
	// label set.
	before := testutil.ToFloat64(cellsTotal.WithLabelValues(OutcomeNotEvaluated))
	ObserveCell("exploded", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(cellsTotal.WithLabelValues(OutcomeNotEvaluated)))
}

func TestMetricsEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	ObserveSweep()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantsweep_optimizer_sweeps_total")
}
