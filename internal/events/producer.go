package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Producer publishes account lifecycle events to the user_events topic.
// Publishing is best-effort: delivery failures are logged and swallowed.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(address, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(address),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Producer{writer: w}
}

type envelope struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	UserID    uint                   `json:"user_id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Publish queues one event keyed by user id. Delivery runs detached from the
// request, same as the downstream HTTP clients; errors never propagate.
func (p *Producer) Publish(ctx context.Context, eventType string, userID uint, data map[string]interface{}) {
	if p == nil || p.writer == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "events", "event_type", eventType)

	ev := envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		l.Error("event_marshal_failed", "error", err)
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(bg, publishTimeout)
		defer cancel()

		msg := kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(userID), 10)),
			Value: value,
		}
		if err := p.writer.WriteMessages(pubCtx, msg); err != nil {
			l.Error("event_publish_failed", "user_id", userID, "error", err)
			return
		}
		l.Info("event_published", "user_id", userID)
	}()
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
