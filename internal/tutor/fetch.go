package tutor

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/abhisek/quiztutor/internal/questiongen"
	"github.com/abhisek/quiztutor/internal/review"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/store"
)

// DefaultSubject is used when a fetch names no subject.
const DefaultSubject = "Python Programming"

// FetchRequest asks for the next question.
type FetchRequest struct {
	UserID  int64
	Subject string
	// Topic is optional.
	Topic string
	// InitialScore, when set, overwrites the score of the generated
	// question's topic before it is reported.
	InitialScore *int
}

// FetchResponse is the question shown to the learner. The correct answer is
// never included.
type FetchResponse struct {
	Category     string            `json:"category"`
	Difficulty   int               `json:"difficulty"`
	Content      string            `json:"content"`
	Options      map[string]string `json:"options"`
	CurrentScore int               `json:"current_score"`
	CurrentQNum  int               `json:"current_q_num"`
}

// Fetch generates a question for the learner and makes it their pending
// question, replacing any unanswered one. The question only becomes pending
// once its topic score has been read or set.
func (s *Service) Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	if req.Subject == "" {
		req.Subject = DefaultSubject
	}

	input, err := s.questionInput(ctx, req)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.Generate(ctx, input)
	if err != nil {
		s.metrics.Question(false)
		log.Printf("tutor: user %d: generate question: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrQuestionGeneration, err)
	}
	s.metrics.Question(true)

	var score int
	if req.InitialScore != nil {
		score = clamp(*req.InitialScore)
		if err := s.scores.SetScore(ctx, req.UserID, q.Category, score); err != nil {
			return nil, fmt.Errorf("%w: set initial score: %v", ErrRepository, err)
		}
	} else {
		score, err = s.scores.GetScore(ctx, req.UserID, q.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: read score: %v", ErrRepository, err)
		}
	}

	s.sessions.SetPending(req.UserID, session.PendingQuestion{
		ID:            uuid.NewString(),
		Subject:       req.Subject,
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		Content:       q.Content,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
	})

	answered := s.sessions.GetOrCreate(req.UserID).TotalAnswered
	every := review.DefaultEvery
	if s.reviews != nil {
		every = s.reviews.Every()
	}
	return &FetchResponse{
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		Content:      q.Content,
		Options:      q.Options,
		CurrentScore: score,
		CurrentQNum:  answered%every + 1,
	}, nil
}

// Topics suggests core topics for subject.
func (s *Service) Topics(ctx context.Context, subject string) ([]string, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	topics, err := s.questions.Topics(ctx, subject)
	if err != nil {
		log.Printf("tutor: topics for %q: %v", subject, err)
		return nil, fmt.Errorf("%w: %v", ErrTopicGeneration, err)
	}
	return topics, nil
}

// questionInput gathers the learner context that pitches the question: the
// topic score (or the average without a topic) and recent mistakes.
func (s *Service) questionInput(ctx context.Context, req FetchRequest) (questiongen.GenerateInput, error) {
	input := questiongen.GenerateInput{Subject: req.Subject, Topic: req.Topic}

	var err error
	switch {
	case req.InitialScore != nil:
		input.Score = clamp(*req.InitialScore)
	case req.Topic != "":
		input.Score, err = s.scores.GetScore(ctx, req.UserID, req.Topic)
	default:
		input.Score, err = s.scores.GetAverageScore(ctx, req.UserID)
	}
	if err != nil {
		return input, fmt.Errorf("%w: read score: %v", ErrRepository, err)
	}

	if req.Topic != "" {
		wrong, err := s.mistakes.ByTopic(ctx, req.UserID, req.Topic, 3)
		if err != nil {
			return input, fmt.Errorf("%w: read mistakes: %v", ErrRepository, err)
		}
		for _, w := range wrong {
			input.RecentErrors = append(input.RecentErrors, summarize(w))
		}
	} else {
		input.WeakCategories, err = s.mistakes.Categories(ctx, req.UserID)
		if err != nil {
			return input, fmt.Errorf("%w: read weak categories: %v", ErrRepository, err)
		}
	}
	return input, nil
}

func summarize(w store.WrongAnswer) string {
	return fmt.Sprintf("%s (chose %s, correct %s). Root cause: %s",
		w.QuestionContent, w.StudentAnswer, w.CorrectAnswer, w.RootCause)
}

func clamp(score int) int {
	return max(store.MinScore, min(store.MaxScore, score))
}
