package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/abhisek/quiztutor/internal/evaluation"
	"github.com/abhisek/quiztutor/internal/events"
	"github.com/abhisek/quiztutor/internal/metrics"
	"github.com/abhisek/quiztutor/internal/review"
	"github.com/abhisek/quiztutor/internal/scoring"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/store"
	"github.com/abhisek/quiztutor/internal/streak"
)

// SubmitRequest carries a learner's answer to their pending question.
type SubmitRequest struct {
	UserID int64  `json:"user_id"`
	Answer string `json:"answer"`
}

// SubmitResponse reports the graded answer and the updated mastery.
type SubmitResponse struct {
	IsCorrect    bool   `json:"is_correct"`
	CurrentTopic string `json:"current_topic"`
	CurrentScore int    `json:"current_score"`
	// BaseScoreChange is the delta applied to the topic score.
	BaseScoreChange int            `json:"base_score_change"`
	StreakMsg       string         `json:"streak_msg"`
	RootCause       string         `json:"root_cause"`
	Improvement     string         `json:"improvement"`
	ReviewData      *review.Review `json:"review_data"`
}

// NormalizeAnswer trims and upper-cases an answer letter.
func NormalizeAnswer(answer string) string {
	return strings.ToUpper(strings.TrimSpace(answer))
}

// Submit grades the learner's answer to their pending question.
//
// It fails with session.ErrNoPendingQuestion when no question is pending,
// leaving the session untouched, and with ErrRepository when the score
// cannot be updated. Evaluator and review failures are absorbed.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	answer := NormalizeAnswer(req.Answer)

	turn, err := s.sessions.Begin(req.UserID, func(q session.PendingQuestion) bool {
		return answer == q.CorrectAnswer
	})
	if err != nil {
		if errors.Is(err, session.ErrNoPendingQuestion) {
			s.metrics.Submit(metrics.OutcomeNoPending)
		}
		return nil, err
	}
	q := turn.Question

	done := s.metrics.EvaluationTimer()
	raw, evalErr := s.evaluator.Evaluate(ctx, evaluation.Input{
		Subject:       q.Subject,
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		Content:       q.Content,
		CorrectAnswer: q.CorrectAnswer,
		StudentAnswer: answer,
		Correct:       turn.Correct,
	})
	done(evalErr == nil)

	result, usedFallback := evaluation.Resolve(raw, evalErr, turn.Correct)
	if usedFallback {
		s.metrics.EvaluatorFallback()
		log.Printf("tutor: user %d: evaluation fell back: %v", req.UserID, evalErr)
	}

	combo, streakMsg := streak.Combo(turn.Streak)

	var delta, score int
	err = s.sessions.WithUser(req.UserID, func() error {
		current, err := s.scores.GetScore(ctx, req.UserID, q.Category)
		if err != nil {
			return fmt.Errorf("read score: %w", err)
		}
		delta = scoring.ComputeDelta(result.ScoreChange, turn.Correct, q.Difficulty, current, combo)
		score, err = scoring.Apply(ctx, s.scores, req.UserID, q.Category, delta)
		return err
	})
	if err != nil {
		s.metrics.Submit(metrics.OutcomeError)
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	s.metrics.ScoreDelta(delta)

	outcome := metrics.OutcomeCorrect
	if !turn.Correct {
		outcome = metrics.OutcomeIncorrect
		s.recordMistake(ctx, req.UserID, q, answer, result)
	}
	s.metrics.Submit(outcome)

	var rev *review.Review
	if s.reviews != nil {
		rev = s.reviews.Maybe(ctx, req.UserID, turn.TotalAnswered, q.Subject)
	}

	s.publish(ctx, events.New(events.AnswerSubmitted, req.UserID, events.AnswerData{
		Topic:        q.Category,
		Difficulty:   q.Difficulty,
		Correct:      turn.Correct,
		Delta:        delta,
		Score:        score,
		Streak:       turn.Streak,
		UsedFallback: usedFallback,
	}))
	if rev != nil {
		s.publish(ctx, events.New(events.ReviewGenerated, req.UserID, events.ReviewData{
			Count:    rev.Count,
			PathType: rev.PathType,
			Gap:      rev.Gap,
		}))
	}

	return &SubmitResponse{
		IsCorrect:       turn.Correct,
		CurrentTopic:    q.Category,
		CurrentScore:    score,
		BaseScoreChange: delta,
		StreakMsg:       streakMsg,
		RootCause:       result.RootCause,
		Improvement:     result.Improvement,
		ReviewData:      rev,
	}, nil
}

// recordMistake appends to the wrong-answer log. Failures are logged only.
func (s *Service) recordMistake(ctx context.Context, userID int64, q session.PendingQuestion, answer string, res evaluation.Result) {
	err := s.mistakes.Record(ctx, store.WrongAnswer{
		UserID:          userID,
		Category:        q.Category,
		QuestionContent: q.Content,
		StudentAnswer:   answer,
		CorrectAnswer:   q.CorrectAnswer,
		RootCause:       res.RootCause,
		Improvement:     res.Improvement,
	})
	if err != nil {
		log.Printf("tutor: user %d: record wrong answer: %v", userID, err)
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("tutor: publish %s: %v", e.Type, err)
	}
}
