package backtest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sweepResult(t *testing.T) *OptimizationResult {
	t.Helper()

	series := validatedSeries(t, tenBarCloses)
	grid := rsiGrid([]float64{3}, []float64{30, 40, 50}, []float64{60, 70})

	opt := newTestOptimizer(t)
	result, err := opt.Optimize(context.Background(), series, grid)
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	return result
}

func TestReporter_RenderMarkdown(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")

	md := r.RenderMarkdown()
	assert.Contains(t, md, "# Optimization Report")
	assert.Contains(t, md, result.RunID.String())
	assert.Contains(t, md, "rsi")
	assert.Contains(t, md, result.Best.Params.Key())
	assert.Contains(t, md, "## All combinations")
}

func TestReporter_WriteJSON(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result.RunID.String(), decoded["run_id"])
	assert.Equal(t, float64(result.Evaluated), decoded["evaluated"])

	rows, ok := decoded["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, len(result.Rows))
}

func TestReporter_WriteCSV(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(result.Rows)+1, "header plus one line per row")
	assert.Equal(t, "params", records[0][0])
	assert.Equal(t, "evaluated", records[1][1])
}

func TestReporter_RenderConsole(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")
	r.SetTopN(3)

	out := r.RenderConsole()
	assert.Contains(t, out, "rsi")
	assert.Contains(t, out, "Sharpe")
	assert.Contains(t, out, result.Best.Params.Key())
}

func TestReporter_WriteManifest(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")

	var buf bytes.Buffer
	require.NoError(t, r.WriteManifest(&buf))

	var m Manifest
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, result.RunID.String(), m.RunID)
	assert.Equal(t, "rsi", m.Family)
	assert.Equal(t, result.Evaluated, m.Evaluated)
	assert.Equal(t, result.Best.Params.Key(), m.BestParams)
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestReporter_SaveAll(t *testing.T) {
	result := sweepResult(t)
	r := NewReporter(result, "rsi")

	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, r.SaveAll(dir))

	for _, name := range []string{"report.md", "results.json", "results.csv", "manifest.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}
