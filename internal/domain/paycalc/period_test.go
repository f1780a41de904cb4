package paycalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodOf(t *testing.T) {
	completedAt := time.Date(2025, time.February, 17, 14, 30, 0, 0, time.UTC)
	period := PeriodOf(completedAt)

	assert.Equal(t, 2025, period.Year)
	assert.Equal(t, time.February, period.Month)
}

func TestParsePeriod_Valid(t *testing.T) {
	period, err := ParsePeriod("2025-02")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2025, Month: time.February}, period)
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, input := range []string{"", "2025", "2025-13", "02-2025", "2025-2"} {
		_, err := ParsePeriod(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestPeriod_String(t *testing.T) {
	period := Period{Year: 2025, Month: time.February}
	assert.Equal(t, "2025-02", period.String())
}

func TestPeriod_StartEnd(t *testing.T) {
	period := Period{Year: 2025, Month: time.December}

	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), period.Start())
	// End rolls over the year boundary.
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), period.End())
}

func TestPeriod_RoundTrip(t *testing.T) {
	original := Period{Year: 2024, Month: time.July}
	parsed, err := ParsePeriod(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
