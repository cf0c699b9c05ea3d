// Package evaluation grades a submitted answer with the LLM and turns the
// untrusted reply into a usable Result.
package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// FallbackMagnitude is the raw score change used when the evaluator
	// cannot be trusted.
	FallbackMagnitude = 15

	FallbackRootCause   = "system fallback"
	FallbackImprovement = "keep steady progress"

	// MaxScoreChange bounds the raw score change accepted from the evaluator.
	MaxScoreChange = 50

	// MaxFeedbackRunes caps root cause and improvement text.
	MaxFeedbackRunes = 200
)

// Result is the evaluator's judgement of one answer.
type Result struct {
	ScoreChange int    `json:"score_change"`
	RootCause   string `json:"root_cause"`
	Improvement string `json:"improvement"`
}

// ParseError reports evaluator output that is not a valid Result.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse evaluation: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fallback is the Result substituted when evaluation fails.
func Fallback(correct bool) Result {
	change := FallbackMagnitude
	if !correct {
		change = -FallbackMagnitude
	}
	return Result{
		ScoreChange: change,
		RootCause:   FallbackRootCause,
		Improvement: FallbackImprovement,
	}
}

// Resolve picks the Result to score with. Any error, whether a ParseError or
// a failed evaluator call, yields the fallback; usedFallback reports which
// branch was taken. A successful Result is sanitized.
func Resolve(res Result, err error, correct bool) (Result, bool) {
	if err != nil {
		return Fallback(correct), true
	}
	return Sanitize(res), false
}

// Sanitize trims feedback text and caps it at MaxFeedbackRunes. Empty
// feedback is replaced with the fallback text.
func Sanitize(r Result) Result {
	r.RootCause = clip(r.RootCause, FallbackRootCause)
	r.Improvement = clip(r.Improvement, FallbackImprovement)
	return r
}

// Parse decodes evaluator output. Malformed JSON, missing fields and
// non-integer score changes are reported as *ParseError.
//
// score_change must lie within [-MaxScoreChange, MaxScoreChange]. A larger
// magnitude is also a *ParseError, so Resolve replaces the whole reply with
// the fallback rather than clamping it.
func Parse(raw []byte) (Result, error) {
	var out struct {
		ScoreChange *json.Number `json:"score_change"`
		RootCause   *string      `json:"root_cause"`
		Improvement *string      `json:"improvement"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, &ParseError{Raw: string(raw), Err: err}
	}
	if out.ScoreChange == nil || out.RootCause == nil || out.Improvement == nil {
		return Result{}, &ParseError{Raw: string(raw), Err: errors.New("missing required field")}
	}

	change, err := out.ScoreChange.Int64()
	if err != nil {
		return Result{}, &ParseError{Raw: string(raw), Err: fmt.Errorf("score_change: %w", err)}
	}
	if change < -MaxScoreChange || change > MaxScoreChange {
		return Result{}, &ParseError{Raw: string(raw), Err: fmt.Errorf("score_change %d out of range", change)}
	}

	return Result{
		ScoreChange: int(change),
		RootCause:   *out.RootCause,
		Improvement: *out.Improvement,
	}, nil
}

func clip(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if utf8.RuneCountInString(s) <= MaxFeedbackRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxFeedbackRunes]))
}
