package market

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Validator checks a price series for schema, ordering and OHLC relationship
// correctness before anything downstream is allowed to consume it.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs all checks against the series. In strict mode the first
// failing check is returned as a *ValidationError and the run must abort. In
// non-strict mode failures are collected as warnings and validation
// continues. Missing business days are always warnings, never fatal.
//
// A series that already passed validation is a no-op: (true, nil, nil).
func (v *Validator) Validate(s *Series, strict bool) (bool, []string, error) {
	if s == nil || s.Len() == 0 {
		return false, nil, &DataError{Message: "price series is empty"}
	}

	if s.validated {
		return true, nil, nil
	}

	var warnings []string
	fail := func(field, msg string) error {
		if strict {
			return &ValidationError{Field: field, Message: msg}
		}
		warnings = append(warnings, field+": "+msg)
		return nil
	}

	valid := true

	for i := 0; i < s.Len(); i++ {
		bar := s.Bar(i)

		if bar.Date.IsZero() {
			valid = false
			if err := fail(fieldAt("date", i), "is required"); err != nil {
				return false, warnings, err
			}
		}

		if i > 0 && !s.Bar(i-1).Date.Before(bar.Date) {
			valid = false
			if err := fail(fieldAt("date", i), fmt.Sprintf("not strictly increasing (prev %s, got %s)",
				s.Bar(i-1).Date.Format("2006-01-02"), bar.Date.Format("2006-01-02"))); err != nil {
				return false, warnings, err
			}
		}

		maxOCL := max3(bar.Open, bar.Close, bar.Low)
		if bar.High < maxOCL {
			valid = false
			if err := fail(fieldAt("high", i), fmt.Sprintf("%.4f below max(open,close,low)=%.4f", bar.High, maxOCL)); err != nil {
				return false, warnings, err
			}
		}

		minOCH := min3(bar.Open, bar.Close, bar.High)
		if bar.Low > minOCH {
			valid = false
			if err := fail(fieldAt("low", i), fmt.Sprintf("%.4f above min(open,close,high)=%.4f", bar.Low, minOCH)); err != nil {
				return false, warnings, err
			}
		}

		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			valid = false
			if err := fail(fieldAt("price", i), "must be positive"); err != nil {
				return false, warnings, err
			}
		}

		if bar.Volume < 0 {
			valid = false
			if err := fail(fieldAt("volume", i), "must be non-negative"); err != nil {
				return false, warnings, err
			}
		}
	}

	// Gap detection runs last and never fails validation.
	for i := 1; i < s.Len(); i++ {
		missed := businessDaysBetween(s.Bar(i-1).Date, s.Bar(i).Date)
		if missed > 0 {
			warnings = append(warnings, fmt.Sprintf("gap: %d missing business day(s) between %s and %s",
				missed, s.Bar(i-1).Date.Format("2006-01-02"), s.Bar(i).Date.Format("2006-01-02")))
		}
	}

	if valid {
		s.validated = true
	}

	log.Debug().
		Int("bars", s.Len()).
		Bool("valid", valid).
		Int("warnings", len(warnings)).
		Msg("Price series validated")

	return valid, warnings, nil
}

func fieldAt(field string, index int) string {
	return fmt.Sprintf("%s[%d]", field, index)
}

// businessDaysBetween counts weekdays strictly between a and b.
func businessDaysBetween(a, b time.Time) int {
	if !a.Before(b) {
		return 0
	}
	count := 0
	for d := truncateDay(a).AddDate(0, 0, 1); d.Before(truncateDay(b)); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
