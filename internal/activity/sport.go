package activity

import "strings"

// Canonical labels that the heuristics can produce.
const (
	SportWorkout        = "Workout"
	SportStrength       = "Strength"
	SportVirtualCycling = "Cycling (Virtual)"
)

// virtualRideMinDistanceM is the distance above which an unlabeled
// workout named after a trainer app counts as a virtual ride.
const virtualRideMinDistanceM = 1000

var sportLabels = map[string]string{
	"Run":              "Running",
	"TrailRun":         "Running",
	"Ride":             "Cycling",
	"VirtualRide":      SportVirtualCycling,
	"IndoorCycling":    SportVirtualCycling,
	"WeightTraining":   SportStrength,
	"StrengthTraining": SportStrength,
	"Walk":             "Walking",
	"Hike":             "Hiking",
	"Swim":             "Swimming",
	"Rowing":           "Rowing",
	"Crossfit":         "CrossFit",
	"Yoga":             "Yoga",
	"Elliptical":       "Elliptical",
	"StairStepper":     "Stair Stepper",
	"NordicSki":        "Skiing",
	"AlpineSki":        "Skiing",
	"Snowboard":        "Snowboard",
}

// foldedLabels indexes sportLabels by lower-cased key.
var foldedLabels = func() map[string]string {
	m := make(map[string]string, len(sportLabels))
	for k, v := range sportLabels {
		m[strings.ToLower(k)] = v
	}
	return m
}()

var (
	virtualRideHints = []string{"zwift", "trainerroad", "virtual"}
	strengthHints    = []string{"strength", "weight", "lift", "gym"}
)

// NormalizeSport maps a provider activity type to its display label.
//
// Known types map through a fixed table, matched exactly and then
// case-insensitively. Other non-empty types pass through unchanged.
// Empty or "Workout" types are classified from the activity name.
func NormalizeSport(kind, name string, distanceM float64) string {
	kind = strings.TrimSpace(kind)
	if label, ok := sportLabels[kind]; ok {
		return label
	}
	if kind != "" && !strings.EqualFold(kind, SportWorkout) {
		if label, ok := foldedLabels[strings.ToLower(kind)]; ok {
			return label
		}
		return kind
	}

	lname := strings.ToLower(name)
	if distanceM > virtualRideMinDistanceM && containsAny(lname, virtualRideHints) {
		return SportVirtualCycling
	}
	if containsAny(lname, strengthHints) {
		return SportStrength
	}
	return SportWorkout
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
