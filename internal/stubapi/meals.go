package stubapi

import (
	"sort"
	"strings"
)

type meal struct {
	Title        string   `json:"title"`
	MealType     string   `json:"meal_type"`
	Kcal         int      `json:"kcal"`
	ProteinG     int      `json:"protein_g"`
	CarbsG       int      `json:"carbs_g"`
	FatG         int      `json:"fat_g"`
	Ingredients  []string `json:"ingredients"`
	Tags         []string `json:"tags"`
	Instructions string   `json:"instructions"`
}

type totals struct {
	Kcal     int `json:"kcal"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

type targets struct {
	TDEEKcal     int `json:"tdee_kcal"`
	TrainingKcal int `json:"training_kcal"`
	ProteinG     int `json:"protein_g"`
	CarbsG       int `json:"carbs_g"`
	FatG         int `json:"fat_g"`
}

type dayPlan struct {
	Date        string   `json:"date"`
	DietPref    string   `json:"diet_pref"`
	Locked      bool     `json:"locked"`
	Meals       []meal   `json:"meals"`
	GroceryList []string `json:"grocery_list"`
	Totals      totals   `json:"totals"`
	Targets     targets  `json:"targets"`
}

// seedOf is the byte sum of s modulo 97.
func seedOf(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i])
	}
	return sum % 97
}

// dailyMeals returns the four demo meals for a date. The same date, diet
// and tweak always produce the same meals.
func dailyMeals(diet, date string, tweak int) []meal {
	seed := (seedOf(date) + tweak) % 100

	breakfast := meal{
		Title: "Breakfast bowl", MealType: "breakfast",
		Kcal: 380 + seed%50, ProteinG: 25, CarbsG: 42, FatG: 12,
		Ingredients:  []string{"oats", "greek yogurt", "berries", "chia seeds", "honey"},
		Tags:         []string{"breakfast", diet},
		Instructions: "Combine oats with yogurt. Top with berries/chia and drizzle honey.",
	}
	lunch := meal{
		Title: "Lunch wrap", MealType: "lunch",
		Kcal: 580 + seed%60, ProteinG: 35, CarbsG: 55, FatG: 18,
		Ingredients:  []string{"whole wheat tortillas", "chicken breast", "lettuce", "tomatoes", "avocado", "yogurt sauce"},
		Tags:         []string{"lunch", diet},
		Instructions: "Fill tortillas with chicken, lettuce, tomatoes and avocado.",
	}
	dinner := meal{
		Title: "Dinner plate", MealType: "dinner",
		Kcal: 680 + seed%70, ProteinG: 40, CarbsG: 60, FatG: 22,
		Ingredients:  []string{"salmon", "rice", "broccoli", "olive oil", "lemon"},
		Tags:         []string{"dinner", diet},
		Instructions: "Bake salmon, steam broccoli, cook rice.",
	}
	snack := meal{
		Title: "Yogurt parfait", MealType: "snack",
		Kcal: 220 + seed%30, ProteinG: 18, CarbsG: 18, FatG: 8,
		Ingredients:  []string{"greek yogurt", "granola", "berries"},
		Tags:         []string{"snack", diet},
		Instructions: "Assemble and enjoy.",
	}
	if seed%2 == 0 {
		snack.Title = "Protein snack"
		snack.Ingredients = []string{"protein shake", "banana"}
	}

	switch d := strings.ToLower(diet); d {
	case "vegan", "vegetarian":
		breakfast.Ingredients = []string{"oats", "plant yogurt", "berries", "chia seeds", "maple syrup"}
		lunch.Ingredients = []string{"whole wheat tortillas", "tempeh", "lettuce", "tomatoes", "avocado", "tahini sauce"}
		dinner.Ingredients = []string{"tofu", "rice", "broccoli", "olive oil", "lemon"}
		snack.Ingredients = []string{"plant yogurt", "granola", "berries"}
	case "pescatarian":
		lunch.Ingredients = []string{"whole wheat tortillas", "tuna", "lettuce", "tomatoes", "avocado", "yogurt sauce"}
	case "keto":
		for _, m := range []*meal{&breakfast, &lunch, &dinner, &snack} {
			m.CarbsG = max(5, m.CarbsG-28)
			m.FatG += 15
		}
	}
	return []meal{breakfast, lunch, dinner, snack}
}

func sumMeals(meals []meal) totals {
	var t totals
	for _, m := range meals {
		t.Kcal += m.Kcal
		t.ProteinG += m.ProteinG
		t.CarbsG += m.CarbsG
		t.FatG += m.FatG
	}
	return t
}

// groceryList is the sorted set of lower-cased ingredients.
func groceryList(meals []meal) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range meals {
		for _, ing := range m.Ingredients {
			k := strings.ToLower(strings.TrimSpace(ing))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func buildPlan(date, diet string, meals []meal, locked bool, trainingKcal int) dayPlan {
	t := sumMeals(meals)
	return dayPlan{
		Date:        date,
		DietPref:    diet,
		Locked:      locked,
		Meals:       meals,
		GroceryList: groceryList(meals),
		Totals:      t,
		Targets: targets{
			TDEEKcal:     t.Kcal,
			TrainingKcal: trainingKcal,
			ProteinG:     t.ProteinG,
			CarbsG:       t.CarbsG,
			FatG:         t.FatG,
		},
	}
}
