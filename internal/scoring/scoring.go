// Package scoring turns an evaluated answer into a bounded mastery delta.
package scoring

import (
	"context"
	"fmt"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5

	MinScore = 0
	MaxScore = 1000
)

// Repository applies a clamped increment to a (user, topic) score.
type Repository interface {
	UpdateScore(ctx context.Context, userID int64, topic string, delta int) (int, error)
}

// ComputeDelta converts a raw evaluator score change into the delta applied
// to a topic score.
//
// The base rewards hard questions answered correctly and penalizes easy
// questions answered incorrectly. The combo bonus is added, then the total is
// damped by an Elo-like multiplier: gains shrink as the score approaches
// 1000, losses shrink as it approaches 0. The product is truncated toward
// zero, and the result always moves at least one point in the direction of
// the answer.
func ComputeDelta(raw int, correct bool, difficulty, currentScore, combo int) int {
	difficulty = max(MinDifficulty, min(MaxDifficulty, difficulty))
	currentScore = max(MinScore, min(MaxScore, currentScore))

	mag := abs(raw)
	var (
		base       int
		multiplier float64
	)
	if correct {
		base = mag + difficulty*5
		multiplier = 1 - float64(currentScore)/2000
	} else {
		base = -(mag + (6-difficulty)*3)
		multiplier = 0.5 + float64(currentScore)/2000
	}

	delta := int(float64(base+combo) * multiplier)

	if correct && delta <= 0 {
		return 1
	}
	if !correct && delta >= 0 {
		return -1
	}
	return delta
}

// Apply adds delta to the user's topic score through the repository and
// returns the new score.
func Apply(ctx context.Context, repo Repository, userID int64, topic string, delta int) (int, error) {
	score, err := repo.UpdateScore(ctx, userID, topic, delta)
	if err != nil {
		return 0, fmt.Errorf("apply score delta: %w", err)
	}
	return score, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
