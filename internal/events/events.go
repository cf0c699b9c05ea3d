// Package events publishes learning events to RabbitMQ. Publishing is
// best-effort and disabled when no broker URI is configured.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys.
const (
	AnswerSubmitted = "answer.submitted"
	ReviewGenerated = "review.generated"
	UserRegistered  = "user.registered"
)

// Event is the envelope published for every routing key.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// New builds an event with a fresh ID.
func New(eventType string, userID int64, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AnswerData is the payload of AnswerSubmitted.
type AnswerData struct {
	Topic        string `json:"topic"`
	Difficulty   int    `json:"difficulty"`
	Correct      bool   `json:"correct"`
	Delta        int    `json:"delta"`
	Score        int    `json:"score"`
	Streak       int    `json:"streak"`
	UsedFallback bool   `json:"usedFallback"`
}

// ReviewData is the payload of ReviewGenerated.
type ReviewData struct {
	Count    int    `json:"count"`
	PathType string `json:"pathType"`
	Gap      string `json:"gap"`
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
