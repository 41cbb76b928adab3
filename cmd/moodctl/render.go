package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

var (
	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f5a97f")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8aadf4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a5adcb"))
	mutedStyle = lipgloss.NewStyle().Faint(true)

	alertStyles = map[weather.Alert]lipgloss.Style{
		weather.AlertNone: lipgloss.NewStyle().Foreground(lipgloss.Color("#a6da95")),
		weather.AlertSoft: lipgloss.NewStyle().Foreground(lipgloss.Color("#eed49f")),
		weather.AlertHigh: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ed8796")),
	}
)

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + value
}

func renderView(v recommendation.View) string {
	hero := v.Hero
	if v.HeroURL != "" {
		hero = v.HeroURL
	}
	lines := []string{
		titleStyle.Render(v.Title),
		field("Mood", string(v.Mood)),
		field("Weather", string(v.Weather)),
		field("Gender", string(v.Gender)),
		field("Hero", hero),
		field("Palette", v.Palette),
		field("Items", strings.Join(v.Items, ", ")),
		field("Accessories", strings.Join(v.Accessories, ", ")),
		"",
		v.Description,
		"",
		mutedStyle.Render(v.Reason),
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderReport(r weather.Report) string {
	alert, ok := alertStyles[r.Alert]
	if !ok {
		alert = lipgloss.NewStyle()
	}
	lines := []string{
		titleStyle.Render(string(r.Weather.Condition)),
		field("Temperature", fmt.Sprintf("%g°C (code %d)", r.Weather.TemperatureC, r.Weather.Code)),
		field("PM10", fmt.Sprintf("%g µg/m³ (%s)", r.AirQuality.PM10, r.AirQuality.PM10Grade.Label)),
		field("PM2.5", fmt.Sprintf("%g µg/m³ (%s)", r.AirQuality.PM25, r.AirQuality.PM25Grade.Label)),
		field("Advisory", alert.Render(r.Advisory)),
		"",
		mutedStyle.Render(strings.TrimSpace(r.Narration)),
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderResult(r inference.Result) string {
	lines := []string{titleStyle.Render("Predictions")}
	lines = append(lines, r.Lines()...)
	if r.Recognized {
		lines = append(lines, "", field("Emotion", string(r.Emotion)))
	}
	if r.Guidance != "" {
		lines = append(lines, mutedStyle.Render(r.Guidance))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderCatalog(records []recommendation.Record) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("%d records", len(records)))}
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%-8s %-7s %-7s %s", rec.ID, rec.Mood, rec.Weather, rec.Title))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
