package shopping

import (
	"strings"

	"glycofy/internal/planner"
)

// Item is one grocery line and how many times it was listed.
type Item struct {
	Name  string `json:"item"`
	Count int    `json:"count"`
}

// GroceryList counts trimmed ingredient strings in first-seen order.
// Matching is case-sensitive. The zero value is an empty list.
type GroceryList struct {
	index map[string]int
	items []Item
}

// Add records one occurrence of an ingredient. Blank input is ignored.
func (g *GroceryList) Add(ingredient string) {
	name := strings.TrimSpace(ingredient)
	if name == "" {
		return
	}
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if i, ok := g.index[name]; ok {
		g.items[i].Count++
		return
	}
	g.index[name] = len(g.items)
	g.items = append(g.items, Item{Name: name, Count: 1})
}

// Items returns a copy of the list in first-seen order.
func (g *GroceryList) Items() []Item {
	out := make([]Item, len(g.items))
	copy(out, g.items)
	return out
}

// Len is the number of distinct items.
func (g *GroceryList) Len() int { return len(g.items) }

// Count returns how many times name was added.
func (g *GroceryList) Count(name string) int {
	if i, ok := g.index[name]; ok {
		return g.items[i].Count
	}
	return 0
}

// FromStrings builds a list from raw ingredient strings.
func FromStrings(ingredients ...string) *GroceryList {
	g := &GroceryList{}
	for _, s := range ingredients {
		g.Add(s)
	}
	return g
}

// Aggregate folds the grocery lists of plans into one list. A plan's own
// grocery list is used when non-empty; otherwise its meal ingredients are.
func Aggregate(plans []planner.DayPlan) *GroceryList {
	g := &GroceryList{}
	for _, p := range plans {
		if len(p.GroceryList) > 0 {
			for _, s := range p.GroceryList {
				g.Add(s)
			}
			continue
		}
		for _, m := range p.Meals {
			for _, s := range m.Ingredients {
				g.Add(s)
			}
		}
	}
	return g
}
