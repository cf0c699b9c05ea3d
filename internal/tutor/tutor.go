// Package tutor wires the quiz loop together: fetching a question, grading
// a submitted answer, updating mastery and producing the periodic review.
package tutor

import (
	"errors"

	"github.com/abhisek/quiztutor/internal/evaluation"
	"github.com/abhisek/quiztutor/internal/events"
	"github.com/abhisek/quiztutor/internal/metrics"
	"github.com/abhisek/quiztutor/internal/questiongen"
	"github.com/abhisek/quiztutor/internal/review"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/store"
)

var (
	// ErrRepository wraps failures of the persistent stores that fail a
	// request.
	ErrRepository = errors.New("repository failure")

	// ErrQuestionGeneration is returned when no valid question could be
	// generated.
	ErrQuestionGeneration = errors.New("question generation failed, please retry")

	// ErrTopicGeneration is returned when no topics could be generated.
	ErrTopicGeneration = errors.New("topic generation failed, please retry")
)

// Deps are the collaborators of a Service. Events and Metrics may be nil.
type Deps struct {
	Sessions  *session.Store
	Scores    store.ScoreRepo
	Mistakes  store.WrongAnswerRepo
	Users     store.UserRepo
	Questions questiongen.Generator
	Evaluator evaluation.Evaluator
	Reviews   *review.Trigger
	Events    events.Publisher
	Metrics   *metrics.Metrics
}

// Service runs the quiz loop.
type Service struct {
	sessions  *session.Store
	scores    store.ScoreRepo
	mistakes  store.WrongAnswerRepo
	users     store.UserRepo
	questions questiongen.Generator
	evaluator evaluation.Evaluator
	reviews   *review.Trigger
	events    events.Publisher
	metrics   *metrics.Metrics
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	pub := deps.Events
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		sessions:  deps.Sessions,
		scores:    deps.Scores,
		mistakes:  deps.Mistakes,
		users:     deps.Users,
		questions: deps.Questions,
		evaluator: deps.Evaluator,
		reviews:   deps.Reviews,
		events:    pub,
		metrics:   deps.Metrics,
	}
}

// Sessions returns the session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}
