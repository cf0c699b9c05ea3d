package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quiztutor/internal/store"
)

// Stats summarizes a learner's progress.
type Stats struct {
	Score          int                 `json:"score"`
	TopicScores    map[string]int      `json:"topic_scores"`
	CategoryCounts map[string]int      `json:"category_counts"`
	WrongQuestions []store.WrongAnswer `json:"wrong_questions"`
}

// Stats returns the learner's average score, topic scores and mistakes,
// newest mistake first. Unknown users yield store.ErrUserNotFound.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	if _, err := s.users.UserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	avg, err := s.scores.GetAverageScore(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	topics, err := s.scores.GetAllScores(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	counts, err := s.mistakes.CountByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	wrong, err := s.mistakes.Recent(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if wrong == nil {
		wrong = []store.WrongAnswer{}
	}

	return &Stats{
		Score:          avg,
		TopicScores:    topics,
		CategoryCounts: counts,
		WrongQuestions: wrong,
	}, nil
}

// Dashboard lists every user with their average score and mistake count,
// highest average first.
func (s *Service) Dashboard(ctx context.Context) ([]store.UserOverview, error) {
	rows, err := s.users.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if rows == nil {
		rows = []store.UserOverview{}
	}
	return rows, nil
}
