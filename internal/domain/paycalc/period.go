package paycalc

import (
	"fmt"
	"time"
)

// Period identifies one calendar month, the grain at which pay is
// accumulated. Its wire and storage form is "YYYY-MM".
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf derives the period a work order contributes to. The source
// is the order's completion timestamp: work completed in February pays
// out in February regardless of when the order was created.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns the first instant of the month in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month in UTC, so the
// period covers [Start, End).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
