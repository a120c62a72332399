// Package summary folds activities into per-day and per-sport kcal totals.
//
// Sport breakdowns keep first-seen order: the order in which each sport is
// first encountered while walking the input activities. Days are ascending.
package summary

import (
	"errors"
	"fmt"
	"sort"

	"glycofy/internal/activity"
	"glycofy/internal/dates"
)

// ErrInvalidRange is returned when from or to is not a YYYY-MM-DD date.
var ErrInvalidRange = errors.New("invalid date range")

// SportTotal is the kcal burned in one sport.
type SportTotal struct {
	Sport string `json:"sport"`
	Kcal  int    `json:"kcal"`
}

// DaySummary is the training done on one calendar date.
type DaySummary struct {
	Date         string       `json:"date"`
	TrainingKcal int          `json:"training_kcal"`
	Activities   int          `json:"activities"`
	BySport      []SportTotal `json:"by_sport"`
}

// Summary is the aggregate over an inclusive date range.
type Summary struct {
	From          string       `json:"from"`
	To            string       `json:"to"`
	TotalKcal     int          `json:"total_training_kcal"`
	ActivityCount int          `json:"activity_count"`
	Days          []DaySummary `json:"days"`
	BySport       []SportTotal `json:"totals_by_sport"`
}

// sportTally accumulates kcal per sport in first-seen order.
type sportTally struct {
	index  map[string]int
	totals []SportTotal
}

func (t *sportTally) add(sport string, kcal int) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	i, ok := t.index[sport]
	if !ok {
		i = len(t.totals)
		t.index[sport] = i
		t.totals = append(t.totals, SportTotal{Sport: sport})
	}
	t.totals[i].Kcal += kcal
}

// Summarize aggregates the activities dated within [from, to].
// A reversed range is swapped. Negative kcal counts as zero, but the
// activity still registers its sport.
func Summarize(acts []activity.Activity, from, to string) (Summary, error) {
	if !dates.IsISODate(from) || !dates.IsISODate(to) {
		return Summary{}, fmt.Errorf("%w: from=%q to=%q", ErrInvalidRange, from, to)
	}
	if from > to {
		from, to = to, from
	}

	type dayAcc struct {
		day   DaySummary
		tally sportTally
	}
	days := make(map[string]*dayAcc)
	var overall sportTally
	s := Summary{From: from, To: to}

	for _, a := range acts {
		d := a.Date()
		if d < from || d > to {
			continue
		}
		kcal := a.Kcal
		if kcal < 0 {
			kcal = 0
		}
		sport := a.Sport()

		acc, ok := days[d]
		if !ok {
			acc = &dayAcc{day: DaySummary{Date: d}}
			days[d] = acc
		}
		acc.day.TrainingKcal += kcal
		acc.day.Activities++
		acc.tally.add(sport, kcal)
		overall.add(sport, kcal)

		s.TotalKcal += kcal
		s.ActivityCount++
	}

	s.Days = make([]DaySummary, 0, len(days))
	for _, acc := range days {
		acc.day.BySport = acc.tally.totals
		s.Days = append(s.Days, acc.day)
	}
	sort.Slice(s.Days, func(i, j int) bool { return s.Days[i].Date < s.Days[j].Date })
	s.BySport = overall.totals
	return s, nil
}

// Day returns the summary for date, or an empty one.
func (s Summary) Day(date string) DaySummary {
	i := sort.Search(len(s.Days), func(i int) bool { return s.Days[i].Date >= date })
	if i < len(s.Days) && s.Days[i].Date == date {
		return s.Days[i]
	}
	return DaySummary{Date: date}
}

// Dense returns one entry per date in the range, zero-filled.
func (s Summary) Dense() []DaySummary {
	all, err := dates.Between(s.From, s.To)
	if err != nil {
		return nil
	}
	out := make([]DaySummary, 0, len(all))
	for _, d := range all {
		out = append(out, s.Day(d))
	}
	return out
}

// SortedByKcal returns totals ordered by kcal descending. Ties keep
// their first-seen order.
func SortedByKcal(totals []SportTotal) []SportTotal {
	out := make([]SportTotal, len(totals))
	copy(out, totals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Kcal > out[j].Kcal })
	return out
}
