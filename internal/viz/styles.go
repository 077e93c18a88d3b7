package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from the current theme on every render so that a theme
// switch takes effect immediately.
type styles struct {
	canvas, panel, header, label, value, hint, status, warn, graph lipgloss.Style
}

func themeStyles(t Theme) styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(panelWidth)
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Dice),
		panel:  panel,
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		hint:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		status: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		warn:   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		graph:  lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
	}
}

// GradientText colours each rune on a blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(Blend(start, end, t)).Render(string(r)))
	}
	return b.String()
}

// ProgressBar renders count of total as a bar width cells wide.
func ProgressBar(count, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := count * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders the most recent width values as block characters.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
