package review

import (
	"context"
	"errors"
	"log"

	"github.com/abhisek/quiztutor/internal/store"
)

const (
	// DefaultEvery is the default review cadence in answers.
	DefaultEvery = 5

	// RecentErrorLimit is how many recent mistakes feed a review.
	RecentErrorLimit = 5
)

var errNoReview = errors.New("generator returned no review")

// Review outcomes reported to the Recorder.
const (
	ResultGenerated = "generated"
	ResultFailed    = "failed"
)

// AverageScorer reads a learner's mean topic score.
type AverageScorer interface {
	GetAverageScore(ctx context.Context, userID int64) (int, error)
}

// MistakeLog reads a learner's recent wrong answers.
type MistakeLog interface {
	Recent(ctx context.Context, userID int64, limit int) ([]store.WrongAnswer, error)
}

// Recorder observes review outcomes.
type Recorder interface {
	ReviewResult(result string)
}

// Trigger decides when a phase review is due and produces it best-effort.
type Trigger struct {
	scores   AverageScorer
	mistakes MistakeLog
	gen      Generator
	every    int
	rec      Recorder
}

// NewTrigger returns a Trigger firing every `every` answers. every <= 0
// selects DefaultEvery. rec may be nil.
func NewTrigger(scores AverageScorer, mistakes MistakeLog, gen Generator, every int, rec Recorder) *Trigger {
	if every <= 0 {
		every = DefaultEvery
	}
	return &Trigger{scores: scores, mistakes: mistakes, gen: gen, every: every, rec: rec}
}

// Every returns the review cadence in answers.
func (t *Trigger) Every() int {
	return t.every
}

// Due reports whether a review fires after totalAnswered answers.
func (t *Trigger) Due(totalAnswered int) bool {
	return totalAnswered >= 1 && totalAnswered%t.every == 0
}

// Maybe returns a review annotated with totalAnswered when one is due. It
// returns nil when no review is due or when producing one fails; failures
// are logged and never returned.
func (t *Trigger) Maybe(ctx context.Context, userID int64, totalAnswered int, subject string) *Review {
	if !t.Due(totalAnswered) {
		return nil
	}

	avg, err := t.scores.GetAverageScore(ctx, userID)
	if err != nil {
		return t.fail(userID, "read average score", err)
	}
	recent, err := t.mistakes.Recent(ctx, userID, RecentErrorLimit)
	if err != nil {
		return t.fail(userID, "read recent mistakes", err)
	}

	r, err := t.gen.Generate(ctx, Input{Subject: subject, AvgScore: avg, RecentErrors: recent})
	if err != nil {
		return t.fail(userID, "generate", err)
	}
	if r == nil {
		return t.fail(userID, "generate", errNoReview)
	}

	r.Count = totalAnswered
	t.record(ResultGenerated)
	return r
}

func (t *Trigger) fail(userID int64, step string, err error) *Review {
	log.Printf("review: user %d: %s: %v", userID, step, err)
	t.record(ResultFailed)
	return nil
}

func (t *Trigger) record(result string) {
	if t.rec != nil {
		t.rec.ReviewResult(result)
	}
}
