package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func TestChannelPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := NewChannelPublisher("", logger)
	defer pub.Close()

	event := NewEvent(EventQuizSubmitted, QuizSubmittedEvent{
		QuizID: 1, StudentID: 2, Score: 3, Total: 4, Percentage: 75.0,
	})
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventClassJoined, ClassJoinedEvent{ClassID: 7, StudentID: 9})

	if event.ID == "" {
		t.Error("event ID must be set")
	}
	if event.Source != EventSource {
		t.Errorf("expected source %q, got %q", EventSource, event.Source)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp must be set")
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("event payload is not valid JSON: %v", err)
	}
	if decoded["type"] != EventClassJoined {
		t.Errorf("expected type %q, got %v", EventClassJoined, decoded["type"])
	}
}
