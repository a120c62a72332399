package apiclient

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"glycofy/internal/activity"
	"glycofy/internal/planner"
	"glycofy/internal/units"
)

// Wire types accept the field-name variants different backend versions
// have used. Adapters below turn them into the canonical model types.

type mealDTO struct {
	Title        string          `json:"title"`
	Name         string          `json:"name"`
	MealType     string          `json:"meal_type"`
	Type         string          `json:"type"`
	Kcal         units.Number    `json:"kcal"`
	Calories     units.Number    `json:"calories"`
	ProteinG     units.Number    `json:"protein_g"`
	CarbsG       units.Number    `json:"carbs_g"`
	FatG         units.Number    `json:"fat_g"`
	Ingredients  []string        `json:"ingredients"`
	Instructions json.RawMessage `json:"instructions"`
}

type targetsDTO struct {
	TDEEKcal     units.Number `json:"tdee_kcal"`
	TrainingKcal units.Number `json:"training_kcal"`
	ProteinG     units.Number `json:"protein_g"`
	CarbsG       units.Number `json:"carbs_g"`
	FatG         units.Number `json:"fat_g"`
}

type dayPlanDTO struct {
	Date        string     `json:"date"`
	DietPref    string     `json:"diet_pref"`
	Locked      bool       `json:"locked"`
	Meals       []mealDTO  `json:"meals"`
	Targets     targetsDTO `json:"targets"`
	GroceryList []string   `json:"grocery_list"`
}

type activityDTO struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Sport       string          `json:"sport"`
	StartTime   string          `json:"start_time"`
	StartDate   string          `json:"start_date"`
	DurationSec units.Number    `json:"duration_sec"`
	DurationS   units.Number    `json:"duration_s"`
	DistanceM   units.Number    `json:"distance_m"`
	Distance    units.Number    `json:"distance"`
	Kcal        units.Number    `json:"kcal"`
	Calories    units.Number    `json:"calories"`
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...units.Number) units.Number {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return units.None
}

// toInt rounds a valid number; absent values become 0.
func toInt(n units.Number) int {
	if !n.Valid {
		return 0
	}
	return int(math.Round(n.Value))
}

func (m mealDTO) toMeal() planner.Meal {
	return planner.Meal{
		Title:        first(m.Title, m.Name),
		MealType:     planner.MealType(strings.ToLower(first(m.MealType, m.Type))),
		Kcal:         toInt(firstNumber(m.Kcal, m.Calories)),
		ProteinG:     toInt(m.ProteinG),
		CarbsG:       toInt(m.CarbsG),
		FatG:         toInt(m.FatG),
		Ingredients:  m.Ingredients,
		Instructions: instructionsText(m.Instructions),
	}
}

// instructionsText accepts a string or a list of steps.
func instructionsText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var steps []string
	if err := json.Unmarshal(raw, &steps); err == nil {
		return strings.Join(steps, "\n")
	}
	return ""
}

func (d dayPlanDTO) toDayPlan() planner.DayPlan {
	p := planner.DayPlan{
		Date:     d.Date,
		DietPref: d.DietPref,
		Locked:   d.Locked,
		Meals:    make([]planner.Meal, 0, len(d.Meals)),
		Targets: planner.Targets{
			TDEEKcal:     toInt(d.Targets.TDEEKcal),
			TrainingKcal: toInt(d.Targets.TrainingKcal),
			ProteinG:     toInt(d.Targets.ProteinG),
			CarbsG:       toInt(d.Targets.CarbsG),
			FatG:         toInt(d.Targets.FatG),
		},
		GroceryList: d.GroceryList,
	}
	for _, m := range d.Meals {
		p.Meals = append(p.Meals, m.toMeal())
	}
	return p
}

func (a activityDTO) toActivity() activity.Activity {
	return activity.Activity{
		ID:          rawID(a.ID),
		Name:        first(a.Name, a.Title),
		Type:        first(a.Type, a.Sport),
		StartTime:   first(a.StartTime, a.StartDate),
		DurationSec: toInt(firstNumber(a.DurationSec, a.DurationS)),
		DistanceM:   firstNumber(a.DistanceM, a.Distance).Value,
		Kcal:        toInt(firstNumber(a.Kcal, a.Calories)),
	}
}

// rawID renders string and numeric ids the same way.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// decodeActivities accepts {"items": [...], ...} or a bare array.
func decodeActivities(body []byte) (ActivityPage, error) {
	var page struct {
		Items    []activityDTO `json:"items"`
		Total    *int          `json:"total"`
		Page     int           `json:"page"`
		PageSize int           `json:"page_size"`
	}
	var items []activityDTO

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return ActivityPage{}, err
		}
		page.Total = nil
	} else {
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return ActivityPage{}, err
		}
		items = page.Items
	}

	out := ActivityPage{
		Items:    make([]activity.Activity, 0, len(items)),
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for _, it := range items {
		out.Items = append(out.Items, it.toActivity())
	}
	if page.Total != nil {
		out.Total = *page.Total
	} else {
		out.Total = len(out.Items)
	}
	return out, nil
}

// UnmarshalJSON accepts the older "linked" spelling of connected.
func (s *StravaStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Connected *bool  `json:"connected"`
		Linked    *bool  `json:"linked"`
		ExpiresAt *int64 `json:"expires_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = StravaStatus{ExpiresAt: raw.ExpiresAt}
	switch {
	case raw.Connected != nil:
		s.Connected = *raw.Connected
	case raw.Linked != nil:
		s.Connected = *raw.Linked
	}
	return nil
}

// UnmarshalJSON accepts the older "created" spelling of inserted.
func (r *SyncResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		OK       bool `json:"ok"`
		Inserted *int `json:"inserted"`
		Created  *int `json:"created"`
		Updated  int  `json:"updated"`
		Total    int  `json:"total"`
		Replaced bool `json:"replaced"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SyncResult{OK: raw.OK, Updated: raw.Updated, Total: raw.Total, Replaced: raw.Replaced}
	switch {
	case raw.Inserted != nil:
		r.Inserted = *raw.Inserted
	case raw.Created != nil:
		r.Inserted = *raw.Created
	}
	return nil
}
