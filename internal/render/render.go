// Package render turns plans, grocery lists and summaries into HTML
// fragments and chart data.
package render

import (
	"html/template"
	"io"
	"strconv"
	"strings"

	"glycofy/internal/planner"
	"glycofy/internal/shopping"
	"glycofy/internal/summary"
)

const weekTemplate = `<table class="week">
<thead><tr><th>Date</th>{{range .Slots}}<th>{{.}}</th>{{end}}<th>Planned kcal</th><th>Training kcal</th></tr></thead>
<tbody>
{{- range .Days}}
<tr data-date="{{.Date}}"{{if .Locked}} class="locked"{{end}}><td>{{.Date}}</td>
{{- range .Cells}}<td>{{if .Title}}{{.Title}} <span class="kcal">{{.Kcal}}</span>{{else}}-{{end}}</td>{{end}}
<td class="planned">{{.Planned}}</td><td class="training">{{.Training}}</td></tr>
{{- end}}
</tbody>
</table>
`

const groceryTemplate = `<ul class="grocery">
{{- range .}}
<li><span class="item">{{.Name}}</span>{{if gt .Count 1}} <span class="count">x{{.Count}}</span>{{end}}</li>
{{- end}}
</ul>
`

const summaryTemplate = `<section class="summary" data-from="{{.From}}" data-to="{{.To}}">
<p class="totals"><span class="total-kcal">{{.TotalKcal}}</span> kcal over <span class="activity-count">{{.ActivityCount}}</span> activities</p>
<table class="days">
<thead><tr><th>Date</th><th>Training kcal</th><th>Activities</th><th>By sport</th></tr></thead>
<tbody>
{{- range .Days}}
<tr data-date="{{.Date}}"><td>{{.Date}}</td><td>{{.TrainingKcal}}</td><td>{{.Activities}}</td><td>{{range $i, $s := .BySport}}{{if $i}}; {{end}}{{$s.Sport}}: {{$s.Kcal}} kcal{{end}}</td></tr>
{{- end}}
</tbody>
</table>
<ul class="donut">
{{- range .Donut}}
<li data-sport="{{.Label}}"><span class="kcal">{{.Kcal}}</span> <span class="pct">{{printf "%.1f" .Percent}}%</span></li>
{{- end}}
</ul>
</section>
`

var (
	weekTmpl    = template.Must(template.New("week").Parse(weekTemplate))
	groceryTmpl = template.Must(template.New("grocery").Parse(groceryTemplate))
	summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))
)

type weekCell struct {
	Title string
	Kcal  int
}

type weekRow struct {
	Date     string
	Locked   bool
	Cells    []weekCell
	Planned  int
	Training int
}

// Week renders one row per plan with a column per meal slot.
func Week(w io.Writer, plans []planner.DayPlan) error {
	data := struct {
		Slots []planner.MealType
		Days  []weekRow
	}{Slots: planner.MealOrder}

	for _, p := range plans {
		row := weekRow{Date: p.Date, Locked: p.Locked, Planned: p.PlannedKcal(), Training: p.Targets.TrainingKcal}
		for _, slot := range planner.MealOrder {
			m, _ := p.Meal(slot)
			row.Cells = append(row.Cells, weekCell{Title: m.Title, Kcal: m.Kcal})
		}
		data.Days = append(data.Days, row)
	}
	return weekTmpl.Execute(w, data)
}

// Grocery renders the aggregated list in first-seen order.
func Grocery(w io.Writer, list *shopping.GroceryList) error {
	return groceryTmpl.Execute(w, list.Items())
}

// Summary renders every date of the range, including idle days, followed
// by the sport breakdown.
func Summary(w io.Writer, s summary.Summary) error {
	data := struct {
		summary.Summary
		Days  []summary.DaySummary
		Donut []Slice
	}{Summary: s, Days: s.Dense(), Donut: Donut(s)}
	return summaryTmpl.Execute(w, data)
}

// Slice is one segment of the sport donut chart.
type Slice struct {
	Label   string  `json:"label"`
	Kcal    int     `json:"kcal"`
	Percent float64 `json:"percent"`
}

// Donut returns the overall sport totals largest first. Ties keep their
// first-seen order. Percent is 0 for every slice when nothing was burned.
func Donut(s summary.Summary) []Slice {
	totals := summary.SortedByKcal(s.BySport)
	sum := 0
	for _, t := range totals {
		sum += t.Kcal
	}

	out := make([]Slice, 0, len(totals))
	for _, t := range totals {
		sl := Slice{Label: t.Sport, Kcal: t.Kcal}
		if sum > 0 {
			sl.Percent = float64(t.Kcal) * 100 / float64(sum)
		}
		out = append(out, sl)
	}
	return out
}

// Rows is the summary as a plain table, one row per date of the range.
func Rows(s summary.Summary) [][]string {
	days := s.Dense()
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.TrainingKcal), strconv.Itoa(d.Activities), SportText(d.BySport)})
	}
	return rows
}

// SportText joins a breakdown as "Running: 500 kcal; Yoga: 0 kcal".
func SportText(totals []summary.SportTotal) string {
	parts := make([]string, 0, len(totals))
	for _, t := range totals {
		parts = append(parts, t.Sport+": "+strconv.Itoa(t.Kcal)+" kcal")
	}
	return strings.Join(parts, "; ")
}

