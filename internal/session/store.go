// Package session holds the ephemeral per-user quiz state: the pending
// question, the signed answer streak and the total answer count.
//
// State lives in process memory only and is lost on restart.
package session

import (
	"errors"
	"sync"

	"github.com/abhisek/quiztutor/internal/streak"
)

// ErrNoPendingQuestion is returned when an answer arrives for a user with no
// question outstanding.
var ErrNoPendingQuestion = errors.New("no pending question, fetch a question first")

// PendingQuestion is the one question awaiting an answer for a user.
type PendingQuestion struct {
	ID            string
	Subject       string
	Category      string
	Difficulty    int
	Content       string
	Options       map[string]string
	CorrectAnswer string
}

// State is a snapshot of a user's session.
type State struct {
	Streak        int
	TotalAnswered int
	Pending       *PendingQuestion
}

// Turn is the outcome of beginning to grade an answer: the consumed question
// and the session counters after the answer was counted.
type Turn struct {
	Question      PendingQuestion
	Correct       bool
	Streak        int
	TotalAnswered int
}

// entry guards one user's state. Each user has their own lock so traffic
// for different users never contends.
type entry struct {
	mu    sync.Mutex
	state State
}

// Store is a concurrent map of per-user session entries.
type Store struct {
	users sync.Map // int64 -> *entry
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) entry(userID int64) *entry {
	if e, ok := s.users.Load(userID); ok {
		return e.(*entry)
	}
	e, _ := s.users.LoadOrStore(userID, &entry{})
	return e.(*entry)
}

// GetOrCreate returns a copy of the user's state, creating a zero-valued
// entry on first use.
func (s *Store) GetOrCreate(userID int64) State {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state
	if st.Pending != nil {
		q := *st.Pending
		st.Pending = &q
	}
	return st
}

// SetPending stores q as the user's pending question, replacing any
// question that was still outstanding.
func (s *Store) SetPending(userID int64, q PendingQuestion) {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Pending = &q
}

// TakePending reads and clears the pending slot.
func (s *Store) TakePending(userID int64) (PendingQuestion, error) {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.takeLocked()
}

// IncrementAnswered bumps the answer count and returns the new total.
func (s *Store) IncrementAnswered(userID int64) int {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.TotalAnswered++
	return e.state.TotalAnswered
}

// Begin takes the pending question, grades it, counts the answer and
// advances the streak as one step under the user's lock. When no question
// is pending it returns ErrNoPendingQuestion and leaves the state untouched.
//
// grade runs under the lock and must not block.
func (s *Store) Begin(userID int64, grade func(PendingQuestion) bool) (Turn, error) {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.takeLocked()
	if err != nil {
		return Turn{}, err
	}

	correct := grade(q)
	e.state.TotalAnswered++
	e.state.Streak = streak.Next(e.state.Streak, correct)

	return Turn{
		Question:      q,
		Correct:       correct,
		Streak:        e.state.Streak,
		TotalAnswered: e.state.TotalAnswered,
	}, nil
}

// WithUser runs fn while holding the user's lock. Calls for the same user are
// serialized; calls for other users proceed in parallel. fn must not call
// back into the Store for the same user.
func (s *Store) WithUser(userID int64, fn func() error) error {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	return fn()
}

// Reset drops every user's session state.
func (s *Store) Reset() {
	s.users.Clear()
}

func (e *entry) takeLocked() (PendingQuestion, error) {
	if e.state.Pending == nil {
		return PendingQuestion{}, ErrNoPendingQuestion
	}
	q := *e.state.Pending
	e.state.Pending = nil
	return q, nil
}
