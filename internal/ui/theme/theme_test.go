package theme

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestScoreBar(t *testing.T) {
	tests := []struct {
		score, width int
		wantFilled   int
	}{
		{0, 10, 0},
		{500, 10, 5},
		{1000, 10, 10},
		{1500, 10, 10},
		{-20, 10, 0},
		{500, 2, 2},
	}
	for _, tt := range tests {
		bar := ScoreBar(tt.score, 1000, tt.width)
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("ScoreBar(%d, width %d) filled = %d, want %d", tt.score, tt.width, got, tt.wantFilled)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := lipgloss.Width(PadRight(Heading.Render("abc"), 8)); got != 8 {
		t.Errorf("padded width = %d, want 8", got)
	}
	if got := PadRight("abcdefgh", 4); got != "abcdefgh" {
		t.Errorf("PadRight shortened the string: %q", got)
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"Purpose", "Calls"}, [][]string{
		{"question-gen", "12"},
		{"evaluation", "9"},
	}, 1)

	for _, want := range []string{"Purpose", "Calls", "question-gen", "evaluation", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines < 5 {
		t.Errorf("table has %d lines, want border, header, separator and two rows", lines)
	}
}
