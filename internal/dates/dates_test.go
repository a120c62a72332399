package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	// 2024-01-01 is a Monday.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("EveryWeekdayMapsToMonday", func(t *testing.T) {
		for i := 0; i < 7; i++ {
			d := monday.AddDate(0, 0, i).Add(13*time.Hour + 37*time.Minute)
			got := StartOfWeek(d)
			assert.Equal(t, time.Monday, got.Weekday(), "input %s", d)
			assert.Equal(t, monday, got, "input %s", d)
		}
	})

	t.Run("UsesUTCDay", func(t *testing.T) {
		// Sunday 23:30 in UTC-5 is Monday 04:30 UTC.
		loc := time.FixedZone("EST", -5*3600)
		d := time.Date(2024, 1, 7, 23, 30, 0, 0, loc)
		assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), StartOfWeek(d))
	})

	t.Run("CrossesYearBoundary", func(t *testing.T) {
		d := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC) // Sunday
		assert.Equal(t, "2022-12-26", FormatISO(StartOfWeek(d)))
	})
}

func TestDatesOfWeek(t *testing.T) {
	start := time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{
		"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29",
		"2024-03-01", "2024-03-02", "2024-03-03",
	}, DatesOfWeek(start))

	t.Run("ContainsInputDate", func(t *testing.T) {
		base := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
		for i := 0; i < 30; i++ {
			d := base.Add(time.Duration(i) * 17 * time.Hour)
			assert.Contains(t, DatesOfWeek(StartOfWeek(d)), FormatISO(d))
			assert.True(t, Week(d).Contains(FormatISO(d)))
		}
	})
}

func TestTruncateISO(t *testing.T) {
	assert.Equal(t, "2024-01-15", TruncateISO("2024-01-15T07:08:51Z"))
	assert.Equal(t, "2024-01-15", TruncateISO("2024-01-15"))
	assert.Equal(t, "2024", TruncateISO("2024"))
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-02-23", DaysAgo(now, 7))
	assert.Equal(t, "2024-03-01", DaysAgo(now, 0))
}

func TestParseOr(t *testing.T) {
	fallback := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Strict", func(t *testing.T) {
		assert.Equal(t, "2024-05-06", FormatISO(ParseOr("2024-05-06", fallback)))
	})
	t.Run("Lenient", func(t *testing.T) {
		assert.Equal(t, "2024-05-06", FormatISO(ParseOr("2024/05/06", fallback)))
		assert.Equal(t, "2024-05-06", FormatISO(ParseOr("May 6, 2024", fallback)))
		assert.Equal(t, "2024-05-06", FormatISO(ParseOr(" 2024-5-6 ", fallback)))
	})
	t.Run("FallsBack", func(t *testing.T) {
		assert.Equal(t, fallback, ParseOr("next tuesday", fallback))
		assert.Equal(t, fallback, ParseOr("", fallback))
	})
}

func TestBetween(t *testing.T) {
	got, err := Between("2024-02-27", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, got)

	got, err = Between("2024-03-02", "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Between("03/01/2024", "2024-03-02")
	assert.Error(t, err)
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("2024-02-29"))
	assert.False(t, IsISODate("2023-02-29"))
	assert.False(t, IsISODate("2024-2-1"))
	assert.False(t, IsISODate(""))
}
