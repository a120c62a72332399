package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"glycofy/internal/apiclient"
	"glycofy/internal/app"
	"glycofy/internal/metrics"
	"glycofy/internal/render"
	"glycofy/internal/summary"
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func errorText(action string, err error) string {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "🔒 *Session expired.* Run `glycofy login` and try again."
	case errors.Is(err, app.ErrMalformedInput):
		return "⚠️ *Invalid input:* " + esc(err.Error())
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr)
}

func formatWeekMarkdownParts(view app.WeekView) (string, string) {
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("📅 *Week of %s*\n\n", view.Range.Dates[0]))

	for _, p := range view.Plans {
		pb.WriteString(fmt.Sprintf("*%s*", p.Date))
		if p.Locked {
			pb.WriteString(" 🔒")
		}
		pb.WriteString(fmt.Sprintf(" (%d kcal", p.PlannedKcal()))
		if p.Targets.TrainingKcal > 0 {
			pb.WriteString(fmt.Sprintf(", %d training", p.Targets.TrainingKcal))
		}
		pb.WriteString(")\n")
		for _, m := range p.Meals {
			pb.WriteString(fmt.Sprintf("• _%s_: %s (%d kcal)\n", m.MealType, esc(m.Title), m.Kcal))
		}
		pb.WriteString("\n")
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Grocery List*\n\n")
	if view.Grocery == nil || view.Grocery.Len() == 0 {
		sb.WriteString("_Nothing to buy_\n")
	} else {
		for _, it := range view.Grocery.Items() {
			if it.Count > 1 {
				sb.WriteString(fmt.Sprintf("• %s x%d\n", esc(it.Name), it.Count))
			} else {
				sb.WriteString(fmt.Sprintf("• %s\n", esc(it.Name)))
			}
		}
	}
	return pb.String(), sb.String()
}

func formatSummaryMarkdown(s summary.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏃 *Training %s → %s*\n\n", s.From, s.To))
	sb.WriteString(fmt.Sprintf("*Total:* %d kcal over %d activities\n\n", s.TotalKcal, s.ActivityCount))

	for _, row := range render.Rows(s) {
		if row[2] == "0" {
			sb.WriteString(fmt.Sprintf("`%s` rest\n", row[0]))
			continue
		}
		sb.WriteString(fmt.Sprintf("`%s` %s kcal: %s\n", row[0], row[1], esc(row[3])))
	}

	if slices := render.Donut(s); len(slices) > 0 {
		sb.WriteString("\n📊 *By sport*\n")
		for _, sl := range slices {
			sb.WriteString(fmt.Sprintf("• %s: %d kcal (%.0f%%)\n", esc(sl.Label), sl.Kcal, sl.Percent))
		}
	}
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent API Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d requests, %d failed, %dms avg\n", d.Date, d.Requests, d.Failures, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Heap) / %dMB (Sys)\n", health.HeapMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
