package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const DefaultTopic = "engagement.events"

// watermillPublisher wraps a watermill publisher (kafka when brokers are
// configured, in-process gochannel otherwise) behind the EventPublisher
// contract.
type watermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaPublisher connects to the given brokers. Used when
// EVENT_BROKERS is set.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (EventPublisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return newWatermillPublisher(pub, topic, logger), nil
}

// NewChannelPublisher is the in-process fallback for local runs and
// deployments without a broker.
func NewChannelPublisher(topic string, logger *slog.Logger) EventPublisher {
	pub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return newWatermillPublisher(pub, topic, logger)
}

func newWatermillPublisher(pub message.Publisher, topic string, logger *slog.Logger) *watermillPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &watermillPublisher{publisher: pub, topic: topic, logger: logger}
}

func (p *watermillPublisher) Publish(_ context.Context, event Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("event_source", event.Source)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Published event", "event_type", event.Type, "event_id", event.ID)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
