package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// LoadCSV reads a price history from a CSV file with a
// date,open,high,low,close,volume header. It is the file-based adapter in
// front of the core; the returned series is unvalidated.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Message: fmt.Sprintf("open %s: %v", path, err)}
	}
	defer f.Close()

	series, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("bars", series.Len()).
		Msg("Loaded price history")

	return series, nil
}

// ReadCSV parses CSV price data from a reader.
func ReadCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &DataError{Message: fmt.Sprintf("read header: %v", err)}
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataError{Message: fmt.Sprintf("row %d: %v", row, err)}
		}

		bar, err := parseBar(record, cols, row)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
		row++
	}

	if len(bars) == 0 {
		return nil, &DataError{Message: "no data rows"}
	}

	return NewSeries(bars), nil
}

type columnIndex struct {
	date, open, high, low, clos, volume int
}

func mapColumns(header []string) (columnIndex, error) {
	cols := columnIndex{date: -1, open: -1, high: -1, low: -1, clos: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "timestamp":
			cols.date = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.clos = i
		case "volume":
			cols.volume = i
		}
	}

	for name, idx := range map[string]int{
		"date": cols.date, "open": cols.open, "high": cols.high,
		"low": cols.low, "close": cols.clos, "volume": cols.volume,
	} {
		if idx < 0 {
			return cols, &DataError{Message: "missing required column: " + name}
		}
	}
	return cols, nil
}

func parseBar(record []string, cols columnIndex, row int) (Bar, error) {
	var bar Bar

	date, err := parseDate(record[cols.date])
	if err != nil {
		return bar, &DataError{Message: fmt.Sprintf("row %d: invalid date %q", row, record[cols.date])}
	}
	bar.Date = date

	fields := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", cols.open, &bar.Open},
		{"high", cols.high, &bar.High},
		{"low", cols.low, &bar.Low},
		{"close", cols.clos, &bar.Close},
		{"volume", cols.volume, &bar.Volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[f.idx]), 64)
		if err != nil {
			return bar, &DataError{Message: fmt.Sprintf("row %d: invalid %s %q", row, f.name, record[f.idx])}
		}
		*f.dst = v
	}

	return bar, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006/01/02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
