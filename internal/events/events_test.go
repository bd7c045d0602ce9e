package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent(OrderPlaced, map[string]any{"orderId": "abc", "total": 12.5})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, OrderPlaced, evt.Type)
	assert.False(t, evt.OccurredAt.IsZero())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "abc", payload["orderId"])

	other, err := NewEvent(OrderPlaced, nil)
	require.NoError(t, err)
	assert.NotEqual(t, evt.ID, other.ID)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEvent(CartCleared, make(chan int))
	assert.Error(t, err)
}

func TestPublisherFunc(t *testing.T) {
	var got []string
	var p Publisher = PublisherFunc(func(_ context.Context, eventType string, _ any) error {
		got = append(got, eventType)
		return nil
	})

	require.NoError(t, p.Publish(context.Background(), OrderPaid, nil))
	require.NoError(t, p.Close())
	assert.Equal(t, []string{OrderPaid}, got)
}

func TestLogPublisher(t *testing.T) {
	var p Publisher = LogPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderStatusChanged, map[string]string{"status": "paid"}))
	assert.Error(t, p.Publish(context.Background(), OrderStatusChanged, func() {}))
}
