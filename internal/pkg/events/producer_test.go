package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	evt := OrderEvent{
		Type:          OrderPaid,
		OrderID:       "order-1",
		UserID:        "user-1",
		TransactionID: "TXN_1_abc",
		Amount:        "1200.00",
		PaymentMethod: "bkash",
		PaymentStatus: "paid",
		OccurredAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("Keyed by order id", func(t *testing.T) {
		w := &fakeWriter{}
		p := newKafkaPublisherWithWriter(w)

		require.NoError(t, p.Publish(context.Background(), evt))
		require.Len(t, w.msgs, 1)

		msg := w.msgs[0]
		assert.Equal(t, "order-1", string(msg.Key))
		assert.Equal(t, "event_type", msg.Headers[0].Key)
		assert.Equal(t, "order.paid", string(msg.Headers[0].Value))

		var decoded OrderEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, evt, decoded)
	})

	t.Run("Write error wrapped", func(t *testing.T) {
		boom := errors.New("broker down")
		p := newKafkaPublisherWithWriter(&fakeWriter{err: boom})

		err := p.Publish(context.Background(), evt)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newKafkaPublisherWithWriter(w).Close())
		assert.True(t, w.closed)
	})
}

func TestNewKafkaPublisher(t *testing.T) {
	p, err := NewKafkaPublisher(nil, "order_events")
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err = NewKafkaPublisher([]string{"localhost:9092"}, "order_events")
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
}
