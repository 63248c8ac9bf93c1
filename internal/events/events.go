// Package events publishes domain events (class joins, status changes, quiz
// submissions) to a message bus. Publishing is best-effort: a broker outage
// must never fail the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventSource = "engagement-service"

// Event types emitted by the services layer.
const (
	EventClassCreated      = "class.created"
	EventClassJoined       = "class.joined"
	EventPollStatusChanged = "poll.status_changed"
	EventQuizStatusChanged = "quiz.status_changed"
	EventQuizSubmitted     = "quiz.submitted"
)

type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Payloads carried in Event.Data.

type ClassJoinedEvent struct {
	ClassID   uint   `json:"class_id"`
	StudentID uint   `json:"student_id"`
	JoinCode  string `json:"join_code"`
}

type StatusChangedEvent struct {
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	TeacherID  uint   `json:"teacher_id"`
}

type QuizSubmittedEvent struct {
	QuizID     uint    `json:"quiz_id"`
	StudentID  uint    `json:"student_id"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
