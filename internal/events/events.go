package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finbook-app/finbook/pkg/logger"
)

// Event is a user lifecycle event published after a successful
// mutation. Publishing is best-effort: a failed publish is logged and
// never fails the operation that produced it.
type Event interface {
	Name() string
}

// UserCreated is published after a user is inserted
type UserCreated struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Name returns the event name
func (UserCreated) Name() string { return "UserCreated" }

// UserDeleted is published after a user and its cascade set are removed
type UserDeleted struct {
	UserID string `json:"user_id"`
}

// Name returns the event name
func (UserDeleted) Name() string { return "UserDeleted" }

// envelope is the wire form of a published event
type envelope struct {
	EventID    string      `json:"event_id"`
	EventName  string      `json:"event_name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher publishes lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// RedisPublisher publishes events onto Redis streams via watermill
type RedisPublisher struct {
	publisher message.Publisher
	logger    *logger.Logger
}

// NewRedisPublisher creates a watermill publisher backed by Redis
// streams
func NewRedisPublisher(client *redis.Client, log *logger.Logger) (*RedisPublisher, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	wmLogger := watermill.NewStdLogger(false, false)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis stream publisher: %w", err)
	}

	return &RedisPublisher{
		publisher: publisher,
		logger:    log.WithComponent("events"),
	}, nil
}

// Publish serializes the event and publishes it to the
// finance-events.<EventName> topic
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(envelope{
		EventID:    watermill.NewUUID(),
		EventName:  event.Name(),
		OccurredAt: time.Now(),
		Payload:    event,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.Name(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	topic := fmt.Sprintf("finance-events.%s", event.Name())
	if err := p.publisher.Publish(topic, msg); err != nil {
		return err
	}

	p.logger.Debug("event published",
		zap.String("event", event.Name()),
		zap.String("topic", topic),
	)

	return nil
}

// Close closes the underlying publisher
func (p *RedisPublisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher discards events. Used in tests and when eventing is
// disabled.
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// Close is a no-op
func (NoopPublisher) Close() error { return nil }
