package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Already clean", "01/03/2024", "01/03/2024"},
		{"Spaces around dash", "01- 03-24", "01-03-24"},
		{"Spaces around every separator", "01 / 03 / 2024", "01/03/2024"},
		{"Surrounding whitespace", "  15-02-24  ", "15-02-24"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanDateString(tc.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		dateStr    string
		expectedOk bool
		expectedY  int
		expectedM  time.Month
		expectedD  int
	}{
		{"Slash day-first", "01/03/2024", true, 2024, time.March, 1},
		{"Dash day-first", "15-02-2024", true, 2024, time.February, 15},
		{"Dash short year", "15-02-24", true, 2024, time.February, 15},
		{"ISO", "2024-03-01", true, 2024, time.March, 1},
		{"OCR spacing", "15- 02-24", true, 2024, time.February, 15},
		{"Empty", "", false, 0, 0, 0},
		{"Garbage", "not a date", false, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, _, err := ParseDate(tc.dateStr)
			if !tc.expectedOk {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedY, date.Year())
			assert.Equal(t, tc.expectedM, date.Month())
			assert.Equal(t, tc.expectedD, date.Day())
		})
	}
}

func TestLeadingDate(t *testing.T) {
	date, rest, ok := LeadingDate("15-02-24 UPI/SWIGGY/1234 349.00 12,651.00")
	require.True(t, ok)
	assert.Equal(t, 2024, date.Year())
	assert.Equal(t, time.February, date.Month())
	assert.Equal(t, 15, date.Day())
	assert.Equal(t, "UPI/SWIGGY/1234 349.00 12,651.00", rest)

	_, _, ok = LeadingDate("UPI/SWIGGY/1234 349.00")
	assert.False(t, ok)

	// Spaces around the separators still count as a leading date.
	assert.True(t, HasLeadingDate("15 - 02 - 24 NEFT CREDIT"))
}

func TestReconcilePeriod(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	txDates := []time.Time{
		day(2024, time.February, 10),
		day(2024, time.February, 1),
		day(2024, time.February, 28),
	}

	t.Run("Declared bounds kept when close to observed", func(t *testing.T) {
		from, to := ReconcilePeriod(day(2024, time.February, 1), day(2024, time.February, 29), txDates)
		assert.Equal(t, day(2024, time.February, 1), from)
		assert.Equal(t, day(2024, time.February, 29), to)
	})

	t.Run("Divergent declared bound replaced by observed", func(t *testing.T) {
		from, to := ReconcilePeriod(day(2014, time.February, 1), day(2024, time.February, 29), txDates)
		assert.Equal(t, day(2024, time.February, 1), from)
		assert.Equal(t, day(2024, time.February, 29), to)
	})

	t.Run("Divergence boundary is inclusive at 120 days", func(t *testing.T) {
		declared := day(2024, time.February, 1).AddDate(0, 0, -120)
		from, _ := ReconcilePeriod(declared, day(2024, time.February, 29), txDates)
		assert.Equal(t, declared, from)

		declared = day(2024, time.February, 1).AddDate(0, 0, -121)
		from, _ = ReconcilePeriod(declared, day(2024, time.February, 29), txDates)
		assert.Equal(t, day(2024, time.February, 1), from)
	})

	t.Run("Zero declared bounds replaced by observed", func(t *testing.T) {
		from, to := ReconcilePeriod(time.Time{}, time.Time{}, txDates)
		assert.Equal(t, day(2024, time.February, 1), from)
		assert.Equal(t, day(2024, time.February, 28), to)
	})

	t.Run("Inverted result is swapped", func(t *testing.T) {
		from, to := ReconcilePeriod(day(2024, time.March, 5), day(2024, time.February, 1), []time.Time{day(2024, time.February, 15)})
		assert.True(t, !to.Before(from))
	})

	t.Run("No transactions uses declared period", func(t *testing.T) {
		from, to := ReconcilePeriod(day(2024, time.February, 1), day(2024, time.February, 29), nil)
		assert.Equal(t, day(2024, time.February, 1), from)
		assert.Equal(t, day(2024, time.February, 29), to)
	})

	t.Run("No transactions and inverted declared period swaps", func(t *testing.T) {
		from, to := ReconcilePeriod(day(2024, time.February, 29), day(2024, time.February, 1), nil)
		assert.Equal(t, day(2024, time.February, 1), from)
		assert.Equal(t, day(2024, time.February, 29), to)
	})
}
