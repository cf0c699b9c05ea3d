// Package theme holds the terminal styles used by the CLI reports.
package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Warn = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

var (
	barFilled = lipgloss.NewStyle().Foreground(Secondary)
	barEmpty  = lipgloss.NewStyle().Foreground(Border)
)

// Rule renders a horizontal separator of the given width.
func Rule(width int) string {
	return lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width))
}

// Mark renders a check or a cross.
func Mark(ok bool) string {
	if ok {
		return Correct.Render("✓")
	}
	return Incorrect.Render("✗")
}

// ScoreBar renders a score in [0, max] as a fixed-width bar followed by
// the numeric score.
func ScoreBar(score, max, width int) string {
	if width < 4 {
		width = 4
	}
	filled := 0
	if max > 0 {
		filled = width * score / max
	}
	filled = max0(min(width, filled))

	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %4d", score)
}

// Table renders rows under a bold header with a dim rounded border.
// Columns listed in numeric are right-aligned.
func Table(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := cell
			if right[col] {
				st = st.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				return st.Bold(true).Foreground(Secondary)
			}
			return st
		}).
		String()
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
