package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// monkquest theme (CLI + TUI).
// Reusable styles and a few emojis.

const (
	IconQuest   = "🗡️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrash   = "🗑️"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconClock   = "⏱️"
	IconBell    = "🔔"
	IconMonk    = "🧘"
	IconGuild   = "🛡️"
	IconScroll  = "📜"
	IconFlame   = "🔥"
	IconPeak    = "🏔️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
	BadgeLate    = lipgloss.NewStyle().Bold(true).Foreground(cWarn).Render("LATE")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func StatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return Good.Render("completed")
	case "active":
		return H2.Render("active")
	case "abandoned":
		return Bad.Render("abandoned")
	case "running":
		return Warn.Render("running")
	default:
		return Muted.Render(status)
	}
}

func PriorityText(priority string) string {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case "HIGH":
		return Bad.Render("HIGH")
	case "MEDIUM":
		return Warn.Render("MEDIUM")
	case "LOW":
		return Good.Render("LOW")
	default:
		return Muted.Render(priority)
	}
}

// RateText colours a success rate against the Monk Mode minimum.
func RateText(rate, minimum int) string {
	s := fmt.Sprintf("%d%%", rate)
	switch {
	case rate >= 80:
		return Good.Render(s)
	case rate >= minimum:
		return Warn.Render(s)
	default:
		return Bad.Render(s)
	}
}

// Clock renders a tracked duration as H:MM:SS.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// ProgressBar draws value/total as a fixed-width bar.
func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	value = max(0, min(value, total))
	filled := min(int(float64(value)/float64(total)*float64(width)), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
