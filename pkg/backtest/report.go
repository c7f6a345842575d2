// Report generation for optimization results
package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Reporter renders an optimization result as markdown, JSON, CSV, a console
// table, and a YAML run manifest. All persistence lives here; the optimizer
// itself owns no files.
type Reporter struct {
	result    *OptimizationResult
	family    string
	selection SelectionPolicy
	topN      int
}

// NewReporter creates a reporter for a sweep result.
func NewReporter(result *OptimizationResult, family string) *Reporter {
	return &Reporter{
		result:    result,
		family:    family,
		selection: BestBySharpe,
		topN:      10,
	}
}

// SetTopN changes how many rows the top table shows.
func (r *Reporter) SetTopN(n int) {
	if n > 0 {
		r.topN = n
	}
}

// RenderMarkdown produces the full markdown report: summary, top table and
// the complete audit table.
func (r *Reporter) RenderMarkdown() string {
	var b strings.Builder
	res := r.result

	fmt.Fprintf(&b, "# Optimization Report\n\n")
	fmt.Fprintf(&b, "- Run ID: `%s`\n", res.RunID)
	fmt.Fprintf(&b, "- Indicator family: `%s`\n", r.family)
	fmt.Fprintf(&b, "- Search space: %d combinations (%d filtered as invalid)\n", res.SearchSpaceSize, res.FilteredInvalid)
	fmt.Fprintf(&b, "- Evaluated: %d, skipped: %d, not evaluated: %d\n", res.Evaluated, res.Skipped, res.NotEvaluated)
	fmt.Fprintf(&b, "- Elapsed: %s\n\n", res.Elapsed)

	if res.Best != nil {
		fmt.Fprintf(&b, "## Best configuration\n\n")
		fmt.Fprintf(&b, "- Parameters: `%s`\n", res.Best.Params.Key())
		fmt.Fprintf(&b, "- Annualized Sharpe: %.4f\n", res.Best.Result.AnnualizedSharpe)
		fmt.Fprintf(&b, "- Total return: %.2f%%\n", res.Best.Result.TotalReturn*100)
		fmt.Fprintf(&b, "- Max drawdown: %.2f%%\n", res.Best.Result.MaxDrawdown*100)
		fmt.Fprintf(&b, "- Win rate: %.2f%%\n", res.Best.Result.WinRate*100)
		fmt.Fprintf(&b, "- Trades: %d\n\n", res.Best.Result.TradeCount)
	} else {
		fmt.Fprintf(&b, "## Best configuration\n\nNo cell produced a result; see skip reasons below.\n\n")
	}

	top := res.TopN(r.topN, r.selection)
	if len(top) > 0 {
		fmt.Fprintf(&b, "## Top %d\n\n", len(top))
		fmt.Fprintf(&b, "| Rank | Parameters | Sharpe | Return | Max DD | Win rate | Trades |\n")
		fmt.Fprintf(&b, "|---:|---|---:|---:|---:|---:|---:|\n")
		for i, row := range top {
			m := row.Result
			fmt.Fprintf(&b, "| %d | `%s` | %.4f | %.2f%% | %.2f%% | %.2f%% | %d |\n",
				i+1, row.Params.Key(), m.AnnualizedSharpe, m.TotalReturn*100, m.MaxDrawdown*100, m.WinRate*100, m.TradeCount)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## All combinations\n\n")
	fmt.Fprintf(&b, "| Parameters | Status | Sharpe | Return | Detail |\n")
	fmt.Fprintf(&b, "|---|---|---:|---:|---|\n")
	for _, row := range res.Rows {
		switch row.Status {
		case CellEvaluated:
			fmt.Fprintf(&b, "| `%s` | evaluated | %.4f | %.2f%% | rank %d |\n",
				row.Params.Key(), row.Result.AnnualizedSharpe, row.Result.TotalReturn*100, row.Rank)
		case CellSkipped:
			fmt.Fprintf(&b, "| `%s` | skipped | | | %s |\n", row.Params.Key(), row.SkipReason)
		default:
			fmt.Fprintf(&b, "| `%s` | not evaluated | | | truncated |\n", row.Params.Key())
		}
	}

	return b.String()
}

// WriteJSON writes the full result as indented JSON.
func (r *Reporter) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.result)
}

// WriteCSV writes the audit table as CSV.
func (r *Reporter) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"params", "status", "sharpe", "total_return", "max_drawdown", "win_rate", "trades", "rank", "detail"}); err != nil {
		return err
	}

	for _, row := range r.result.Rows {
		record := []string{row.Params.Key(), string(row.Status), "", "", "", "", "", "", row.SkipReason}
		if row.Status == CellEvaluated {
			m := row.Result
			record[2] = strconv.FormatFloat(m.AnnualizedSharpe, 'f', 6, 64)
			record[3] = strconv.FormatFloat(m.TotalReturn, 'f', 6, 64)
			record[4] = strconv.FormatFloat(m.MaxDrawdown, 'f', 6, 64)
			record[5] = strconv.FormatFloat(m.WinRate, 'f', 6, 64)
			record[6] = strconv.Itoa(m.TradeCount)
			record[7] = strconv.Itoa(row.Rank)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	return cw.Error()
}

// RenderConsole renders the top table for terminal output.
func (r *Reporter) RenderConsole() string {
	t := table.NewWriter()
	t.SetTitle("Sweep %s (%s)", r.family, r.result.RunID)
	t.AppendHeader(table.Row{"#", "Parameters", "Sharpe", "Return", "Max DD", "Win rate", "Trades"})

	for i, row := range r.result.TopN(r.topN, r.selection) {
		m := row.Result
		t.AppendRow(table.Row{
			i + 1,
			row.Params.Key(),
			fmt.Sprintf("%.4f", m.AnnualizedSharpe),
			fmt.Sprintf("%.2f%%", m.TotalReturn*100),
			fmt.Sprintf("%.2f%%", m.MaxDrawdown*100),
			fmt.Sprintf("%.2f%%", m.WinRate*100),
			m.TradeCount,
		})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("evaluated %d / skipped %d / filtered %d",
		r.result.Evaluated, r.result.Skipped, r.result.FilteredInvalid), "", "", "", "", ""})

	return t.Render()
}

// Manifest is the YAML run summary written next to the reports.
type Manifest struct {
	RunID           string    `yaml:"run_id"`
	GeneratedAt     time.Time `yaml:"generated_at"`
	Family          string    `yaml:"family"`
	SearchSpaceSize int       `yaml:"search_space_size"`
	FilteredInvalid int       `yaml:"filtered_invalid"`
	Evaluated       int       `yaml:"evaluated"`
	Skipped         int       `yaml:"skipped"`
	NotEvaluated    int       `yaml:"not_evaluated"`
	ElapsedSeconds  float64   `yaml:"elapsed_seconds"`
	BestParams      string    `yaml:"best_params,omitempty"`
	BestSharpe      float64   `yaml:"best_sharpe,omitempty"`
}

// WriteManifest writes the YAML run manifest.
func (r *Reporter) WriteManifest(w io.Writer) error {
	m := Manifest{
		RunID:           r.result.RunID.String(),
		GeneratedAt:     time.Now().UTC(),
		Family:          r.family,
		SearchSpaceSize: r.result.SearchSpaceSize,
		FilteredInvalid: r.result.FilteredInvalid,
		Evaluated:       r.result.Evaluated,
		Skipped:         r.result.Skipped,
		NotEvaluated:    r.result.NotEvaluated,
		ElapsedSeconds:  r.result.Elapsed.Seconds(),
	}
	if r.result.Best != nil {
		m.BestParams = r.result.Best.Params.Key()
		m.BestSharpe = r.result.Best.Result.AnnualizedSharpe
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(m)
}

// SaveAll writes report.md, results.json, results.csv and manifest.yaml to
// the directory, creating it if needed.
func (r *Reporter) SaveAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"report.md", func(w io.Writer) error {
			_, err := io.WriteString(w, r.RenderMarkdown())
			return err
		}},
		{"results.json", r.WriteJSON},
		{"results.csv", r.WriteCSV},
		{"manifest.yaml", r.WriteManifest},
	}

	for _, item := range writers {
		path := filepath.Join(dir, item.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := item.write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}

	log.Info().Str("dir", dir).Msg("Reports written")
	return nil
}
