package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		anchor   string
		cadence  Cadence
		cycles   int
		expected string
	}{
		{"monthly simple", "2024-03-15", Monthly, 1, "2024-04-15"},
		{"monthly zero cycles returns anchor", "2024-03-15", Monthly, 0, "2024-03-15"},
		{"monthly clamp into leap february", "2024-01-31", Monthly, 1, "2024-02-29"},
		{"monthly clamp into non-leap february", "2023-01-31", Monthly, 1, "2023-02-28"},
		{"clamp does not truncate later cycles", "2024-01-31", Monthly, 2, "2024-03-31"},
		{"monthly clamp 30-day month", "2024-05-31", Monthly, 1, "2024-06-30"},
		{"quarterly", "2024-01-15", Quarterly, 1, "2024-04-15"},
		{"quarterly clamp", "2024-01-31", Quarterly, 1, "2024-04-30"},
		{"half-yearly", "2024-02-29", HalfYearly, 1, "2024-08-29"},
		{"yearly leap anchor into non-leap year", "2024-02-29", Yearly, 1, "2025-02-28"},
		{"yearly four cycles back to leap day", "2024-02-29", Yearly, 4, "2028-02-29"},
		{"monthly year rollover", "2024-11-30", Monthly, 3, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor, err := ParseDate(tt.anchor)
			require.NoError(t, err)

			got, err := NextDueDate(anchor, tt.cadence, tt.cycles)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestNextDueDate_InvalidInput(t *testing.T) {
	anchor := NewDate(2024, time.March, 15)

	_, err := NextDueDate(anchor, Monthly, -1)
	assert.ErrorIs(t, err, ErrNegativeCycles)

	_, err = NextDueDate(anchor, Cadence("Weekly"), 1)
	assert.Error(t, err)
}

// Cycle counting is always relative to the original anchor, so n cycles of a
// coarse cadence must land on the same date as the equivalent number of
// monthly cycles, and consecutive due dates must strictly increase even when
// intermediate cycles clamp.
func TestNextDueDate_IncrementalMatchesBatch(t *testing.T) {
	anchors := []Date{
		NewDate(2024, time.January, 31),
		NewDate(2024, time.February, 29),
		NewDate(2023, time.December, 1),
		NewDate(2024, time.May, 30),
	}

	equivalents := []struct {
		cadence Cadence
		months  int
	}{
		{Quarterly, 3},
		{HalfYearly, 6},
		{Yearly, 12},
	}

	for _, anchor := range anchors {
		for _, eq := range equivalents {
			for n := 1; n <= 8; n++ {
				coarse, err := NextDueDate(anchor, eq.cadence, n)
				require.NoError(t, err)

				fine, err := NextDueDate(anchor, Monthly, n*eq.months)
				require.NoError(t, err)

				assert.Equal(t, fine, coarse, "anchor %s cadence %s n %d", anchor, eq.cadence, n)
			}
		}

		for _, cadence := range []Cadence{Monthly, Quarterly, HalfYearly, Yearly} {
			prev := anchor
			for n := 1; n <= 24; n++ {
				due, err := NextDueDate(anchor, cadence, n)
				require.NoError(t, err)
				assert.True(t, prev.Before(due), "due dates must strictly increase (anchor %s cadence %s n %d)", anchor, cadence, n)
				prev = due
			}
		}
	}
}

func TestNextDueAfter(t *testing.T) {
	anchor := NewDate(2024, time.January, 31)

	// Quarterly pledge paid early: next due is the first schedule slot
	// after the payment date, computed from the original anchor.
	due, err := NextDueAfter(anchor, Quarterly, NewDate(2024, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-30", due.String())

	// Payment lands exactly on a due date: strictly-after moves forward.
	due, err = NextDueAfter(anchor, Quarterly, NewDate(2024, time.April, 30))
	require.NoError(t, err)
	assert.Equal(t, "2024-07-31", due.String())

	// Very late payment skips past the missed slots.
	due, err = NextDueAfter(anchor, Monthly, NewDate(2024, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", due.String())
}

func TestDaysBetween(t *testing.T) {
	a := NewDate(2024, time.March, 15)
	b := NewDate(2024, time.March, 20)

	assert.Equal(t, 5, DaysBetween(a, b))
	assert.Equal(t, -5, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	// Across a leap day.
	assert.Equal(t, 2, DaysBetween(NewDate(2024, time.February, 28), NewDate(2024, time.March, 1)))
}

func TestDateJSONAndSQL(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(data))

	var back Date
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, d, back)

	var scanned Date
	require.NoError(t, scanned.Scan("2024-02-29"))
	assert.Equal(t, d, scanned)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}
