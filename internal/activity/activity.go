package activity

import (
	"glycofy/internal/dates"
)

// Activity is one recorded training session.
type Activity struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	StartTime   string  `json:"start_time"`
	DurationSec int     `json:"duration_sec"`
	DistanceM   float64 `json:"distance_m"`
	Kcal        int     `json:"kcal"`
}

// Date is the calendar date the activity started on.
func (a Activity) Date() string {
	return dates.TruncateISO(a.StartTime)
}

// Sport is the canonical label for the activity.
func (a Activity) Sport() string {
	return NormalizeSport(a.Type, a.Name, a.DistanceM)
}
