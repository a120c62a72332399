package planner

import "strings"

// MealType is the slot a meal fills in a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealOrder is the display order of meal slots.
var MealOrder = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType validates a user-supplied meal slot.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MealOrder {
		if mt == known {
			return mt, true
		}
	}
	return "", false
}

// Meal is one recipe in a day plan.
type Meal struct {
	Title        string   `json:"title"`
	MealType     MealType `json:"meal_type"`
	Kcal         int      `json:"kcal"`
	ProteinG     int      `json:"protein_g"`
	CarbsG       int      `json:"carbs_g"`
	FatG         int      `json:"fat_g"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions,omitempty"`
}

// Targets are the day's energy and macro goals.
type Targets struct {
	TDEEKcal     int `json:"tdee_kcal"`
	TrainingKcal int `json:"training_kcal"`
	ProteinG     int `json:"protein_g"`
	CarbsG       int `json:"carbs_g"`
	FatG         int `json:"fat_g"`
}

// DayPlan is the server-computed plan for a single calendar date.
// A nil GroceryList means the server did not send one.
type DayPlan struct {
	Date        string   `json:"date"`
	DietPref    string   `json:"diet_pref,omitempty"`
	Meals       []Meal   `json:"meals"`
	Targets     Targets  `json:"targets"`
	Locked      bool     `json:"locked"`
	GroceryList []string `json:"grocery_list"`
}

// PlannedKcal sums the kcal of every meal.
func (p DayPlan) PlannedKcal() int {
	total := 0
	for _, m := range p.Meals {
		total += m.Kcal
	}
	return total
}

// Meal returns the meal in the given slot.
func (p DayPlan) Meal(mt MealType) (Meal, bool) {
	for _, m := range p.Meals {
		if m.MealType == mt {
			return m, true
		}
	}
	return Meal{}, false
}
