package store

import (
	"context"
	"errors"
	"time"
)

// Roles stored on user accounts.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("username already exists")
	// ErrUserNotFound is returned when a user lookup has no match.
	ErrUserNotFound = errors.New("user not found")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Purpose string // exact match when set
}

// User is a registered learner or teacher account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserOverview is one row of the teacher dashboard.
type UserOverview struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	AvgScore   int    `json:"avg_score"`
	WrongCount int    `json:"wrong_count"`
}

// WrongAnswer is a single incorrectly answered question.
type WrongAnswer struct {
	ID              int64     `json:"-"`
	UserID          int64     `json:"-"`
	Category        string    `json:"category"`
	QuestionContent string    `json:"question_content"`
	StudentAnswer   string    `json:"student_answer"`
	CorrectAnswer   string    `json:"correct_answer"`
	RootCause       string    `json:"root_cause"`
	Improvement     string    `json:"improvement"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScoreRepo persists per-(user, topic) mastery scores in [0, 1000].
type ScoreRepo interface {
	// GetScore returns the topic score, or DefaultScore if none is recorded.
	GetScore(ctx context.Context, userID int64, topic string) (int, error)

	// UpdateScore atomically adds delta to the topic score, clamping the
	// result to [MinScore, MaxScore], and returns the new value. A missing
	// row starts from DefaultScore.
	UpdateScore(ctx context.Context, userID int64, topic string, delta int) (int, error)

	// SetScore overwrites the topic score (clamped).
	SetScore(ctx context.Context, userID int64, topic string, score int) error

	// GetAverageScore returns the truncated mean over the user's scored
	// topics, or DefaultScore when there are none.
	GetAverageScore(ctx context.Context, userID int64) (int, error)

	// GetAllScores returns every scored topic for the user.
	GetAllScores(ctx context.Context, userID int64) (map[string]int, error)
}

// UserRepo manages accounts.
type UserRepo interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
	SetRole(ctx context.Context, username, role string) error
	Overview(ctx context.Context) ([]UserOverview, error)
}

// WrongAnswerRepo is the append-only wrong-answer log.
type WrongAnswerRepo interface {
	Record(ctx context.Context, w WrongAnswer) error

	// Recent returns the user's wrong answers newest first. limit <= 0
	// returns all of them.
	Recent(ctx context.Context, userID int64, limit int) ([]WrongAnswer, error)

	// ByTopic returns the newest wrong answers whose category contains topic.
	ByTopic(ctx context.Context, userID int64, topic string, limit int) ([]WrongAnswer, error)

	// Categories returns the distinct categories the user has missed.
	Categories(ctx context.Context, userID int64) ([]string, error)

	// CountByCategory returns the number of wrong answers per category.
	CountByCategory(ctx context.Context, userID int64) (map[string]int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a persisted LLM call.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns nil, nil when no event has the given ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
