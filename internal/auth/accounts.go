package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quiztutor/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidInput is returned for a blank username or password.
	ErrInvalidInput = errors.New("username and password are required")
)

// Session is the result of a successful login.
type Session struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"-"`
	Score       int    `json:"score"`
	AccessToken string `json:"access_token"`
}

// AverageScorer reads a user's mean topic score.
type AverageScorer interface {
	GetAverageScore(ctx context.Context, userID int64) (int, error)
}

// Accounts registers users and logs them in.
type Accounts struct {
	users  store.UserRepo
	scores AverageScorer
	tokens *TokenService
}

// NewAccounts creates an Accounts service.
func NewAccounts(users store.UserRepo, scores AverageScorer, tokens *TokenService) *Accounts {
	return &Accounts{users: users, scores: scores, tokens: tokens}
}

// Register creates a student account. A taken username yields
// store.ErrUserExists.
func (a *Accounts) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return a.users.CreateUser(ctx, username, hash)
}

// Login verifies the credentials and issues a token.
func (a *Accounts) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := a.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	score, err := a.scores.GetAverageScore(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("read average score: %w", err)
	}
	token, err := a.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Score:       score,
		AccessToken: token,
	}, nil
}
