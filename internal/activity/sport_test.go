package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSport(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		title    string
		distance float64
		want     string
	}{
		{"Ride", "Ride", "Morning Ride", 30000, "Cycling"},
		{"Run", "Run", "", 5000, "Running"},
		{"TrailRun", "TrailRun", "", 0, "Running"},
		{"VirtualRide", "VirtualRide", "", 0, "Cycling (Virtual)"},
		{"IndoorCycling", "IndoorCycling", "", 0, "Cycling (Virtual)"},
		{"WeightTraining", "WeightTraining", "", 0, "Strength"},
		{"StairStepper", "StairStepper", "", 0, "Stair Stepper"},
		{"NordicSki", "NordicSki", "", 0, "Skiing"},
		{"Crossfit", "Crossfit", "", 0, "CrossFit"},
		{"CaseInsensitive", "virtualride", "", 0, "Cycling (Virtual)"},
		{"UnknownPassesThrough", "Kitesurf", "", 0, "Kitesurf"},
		{"LowercaseUnknownPassesThrough", "cycling", "", 0, "cycling"},
		{"EmptyZwift", "", "Zwift Ride", 5000, "Cycling (Virtual)"},
		{"WorkoutTrainerRoad", "Workout", "TrainerRoad - Baxter", 20000, "Cycling (Virtual)"},
		{"ShortZwiftIsNotARide", "", "Zwift warmup", 500, "Workout"},
		{"StrengthByName", "workout", "Evening Weight Session", 0, "Strength"},
		{"GymByName", "", "Gym", 0, "Strength"},
		{"DefaultWorkout", "", "Something", 0, "Workout"},
		{"BlankEverything", "  ", "", 0, "Workout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSport(tt.kind, tt.title, tt.distance))
		})
	}
}

func TestActivityHelpers(t *testing.T) {
	a := Activity{Type: "", Name: "Zwift - Watopia", DistanceM: 25000, StartTime: "2024-01-15T06:30:00Z"}
	assert.Equal(t, "2024-01-15", a.Date())
	assert.Equal(t, "Cycling (Virtual)", a.Sport())
}
