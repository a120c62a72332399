package summary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycofy/internal/activity"
)

func TestSummarize(t *testing.T) {
	t.Run("ExcludesOutOfRange", func(t *testing.T) {
		acts := []activity.Activity{
			{ID: "1", Type: "Run", StartTime: "2024-01-01T07:00:00Z", Kcal: 400},
			{ID: "2", Type: "Ride", StartTime: "2024-01-15T07:00:00Z", Kcal: 800},
			{ID: "3", Type: "Ride", StartTime: "2024-02-01T07:00:00Z", Kcal: 900},
		}
		s, err := Summarize(acts, "2024-01-01", "2024-01-31")
		require.NoError(t, err)

		assert.Equal(t, 2, s.ActivityCount)
		assert.Equal(t, 1200, s.TotalKcal)
		require.Len(t, s.Days, 2)
		assert.Equal(t, "2024-01-01", s.Days[0].Date)
		assert.Equal(t, "2024-01-15", s.Days[1].Date)
	})

	t.Run("DaysAscendingAndSportsFirstSeen", func(t *testing.T) {
		acts := []activity.Activity{
			{Type: "Walk", StartTime: "2024-03-03T18:00:00Z", Kcal: 120},
			{Type: "Ride", StartTime: "2024-03-01T07:00:00Z", Kcal: 600},
			{Type: "WeightTraining", StartTime: "2024-03-01T18:00:00Z", Kcal: 200},
			{Type: "Ride", StartTime: "2024-03-01T19:00:00Z", Kcal: 100},
			{Type: "", Name: "Zwift Ride", DistanceM: 5000, StartTime: "2024-03-02T06:00:00Z", Kcal: 500},
		}
		s, err := Summarize(acts, "2024-03-01", "2024-03-07")
		require.NoError(t, err)

		require.Len(t, s.Days, 3)
		assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"},
			[]string{s.Days[0].Date, s.Days[1].Date, s.Days[2].Date})

		assert.Equal(t, DaySummary{
			Date:         "2024-03-01",
			TrainingKcal: 900,
			Activities:   3,
			BySport: []SportTotal{
				{Sport: "Cycling", Kcal: 700},
				{Sport: "Strength", Kcal: 200},
			},
		}, s.Days[0])

		assert.Equal(t, []SportTotal{
			{Sport: "Walking", Kcal: 120},
			{Sport: "Cycling", Kcal: 700},
			{Sport: "Strength", Kcal: 200},
			{Sport: "Cycling (Virtual)", Kcal: 500},
		}, s.BySport)
	})

	t.Run("ZeroAndNegativeKcal", func(t *testing.T) {
		acts := []activity.Activity{
			{Type: "Yoga", StartTime: "2024-03-01T07:00:00Z", Kcal: 0},
			{Type: "Swim", StartTime: "2024-03-01T08:00:00Z", Kcal: -50},
		}
		s, err := Summarize(acts, "2024-03-01", "2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, 0, s.TotalKcal)
		assert.Equal(t, 2, s.ActivityCount)
		assert.Equal(t, []SportTotal{{Sport: "Yoga"}, {Sport: "Swimming"}}, s.Days[0].BySport)
	})

	t.Run("ReversedRangeIsSwapped", func(t *testing.T) {
		acts := []activity.Activity{{Type: "Run", StartTime: "2024-01-10", Kcal: 300}}
		s, err := Summarize(acts, "2024-01-31", "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", s.From)
		assert.Equal(t, "2024-01-31", s.To)
		assert.Equal(t, 300, s.TotalKcal)
	})

	t.Run("InvalidRange", func(t *testing.T) {
		_, err := Summarize(nil, "", "2024-01-01")
		assert.True(t, errors.Is(err, ErrInvalidRange))
		_, err = Summarize(nil, "2024-01-01", "01/31/2024")
		assert.True(t, errors.Is(err, ErrInvalidRange))
	})

	t.Run("Deterministic", func(t *testing.T) {
		acts := []activity.Activity{
			{Type: "Run", StartTime: "2024-01-02", Kcal: 1},
			{Type: "Ride", StartTime: "2024-01-01", Kcal: 2},
			{Type: "Swim", StartTime: "2024-01-02", Kcal: 3},
			{Type: "Hike", StartTime: "2024-01-03", Kcal: 4},
		}
		first, err := Summarize(acts, "2024-01-01", "2024-01-03")
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			again, err := Summarize(acts, "2024-01-01", "2024-01-03")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})
}

func TestDense(t *testing.T) {
	acts := []activity.Activity{{Type: "Run", StartTime: "2024-01-02T10:00:00Z", Kcal: 300}}
	s, err := Summarize(acts, "2024-01-01", "2024-01-03")
	require.NoError(t, err)

	dense := s.Dense()
	require.Len(t, dense, 3)
	assert.Equal(t, DaySummary{Date: "2024-01-01"}, dense[0])
	assert.Equal(t, 300, dense[1].TrainingKcal)
	assert.Equal(t, DaySummary{Date: "2024-01-03"}, dense[2])
}

func TestSortedByKcal(t *testing.T) {
	in := []SportTotal{{"Walking", 100}, {"Cycling", 700}, {"Yoga", 100}, {"Running", 300}}
	assert.Equal(t, []SportTotal{{"Cycling", 700}, {"Running", 300}, {"Walking", 100}, {"Yoga", 100}}, SortedByKcal(in))
	assert.Equal(t, "Walking", in[0].Sport, "input must not be reordered")
}
