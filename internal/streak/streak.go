// Package streak tracks signed runs of consecutive correct or incorrect
// answers and the combo bonus they earn.
package streak

import "fmt"

const (
	// ComboThreshold is the run length at which a combo bonus starts.
	ComboThreshold = 3

	// MaxCorrectBonus caps the bonus for a correct run.
	MaxCorrectBonus = 30

	// MaxIncorrectPenalty caps the penalty for an incorrect run.
	MaxIncorrectPenalty = -15
)

// Next returns the streak after an answer. A positive streak counts
// consecutive correct answers, a negative one consecutive misses. Changing
// direction restarts the run at 1 or -1.
func Next(prev int, correct bool) int {
	if correct {
		if prev > 0 {
			return prev + 1
		}
		return 1
	}
	if prev < 0 {
		return prev - 1
	}
	return -1
}

// Combo returns the bonus and user-facing message for a streak. Runs shorter
// than ComboThreshold in either direction earn nothing and an empty message.
func Combo(streak int) (int, string) {
	switch {
	case streak >= ComboThreshold:
		bonus := min(MaxCorrectBonus, 5*(streak-2))
		return bonus, fmt.Sprintf("%d consecutive correct, bonus +%d", streak, bonus)
	case streak <= -ComboThreshold:
		run := -streak
		bonus := max(MaxIncorrectPenalty, -3*(run-2))
		return bonus, fmt.Sprintf("%d consecutive incorrect, stay encouraged", run)
	default:
		return 0, ""
	}
}
