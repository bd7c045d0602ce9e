// Package events publishes storefront domain events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	OrderPlaced        = "order.placed"
	OrderPaid          = "order.paid"
	OrderStatusChanged = "order.status_changed"
	CartCleared        = "cart.cleared"
)

// Event is the envelope every message is wrapped in.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// NewEvent wraps payload in an envelope with a fresh id.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, eventType string, payload any) error

func (f PublisherFunc) Publish(ctx context.Context, eventType string, payload any) error {
	return f(ctx, eventType, payload)
}

func (f PublisherFunc) Close() error { return nil }

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, eventType string, payload any) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"event_id":   evt.ID,
		"event_type": evt.Type,
		"payload":    string(evt.Payload),
	}).Info("domain event")
	return nil
}

func (LogPublisher) Close() error { return nil }
