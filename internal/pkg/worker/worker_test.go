package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shop_checkout/internal/pkg/events"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	mu       sync.Mutex
	name     string
	failures int32
	calls    atomic.Int32
	seen     []string
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Handle(_ context.Context, evt events.OrderEvent) error {
	n := h.calls.Add(1)
	if n <= h.failures {
		return errors.New("temporary failure")
	}
	h.mu.Lock()
	h.seen = append(h.seen, evt.OrderID)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) orders() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestPool_Dispatch(t *testing.T) {
	t.Run("Fan out to every handler", func(t *testing.T) {
		kafka := &recordingHandler{name: "kafka"}
		push := &recordingHandler{name: "push"}
		p := NewPool(Options{Workers: 2, QueueSize: 10}, nil, kafka, push)
		p.Start()

		p.Dispatch(events.OrderEvent{Type: events.OrderPaid, OrderID: "o-1"})
		p.Stop()

		assert.Equal(t, []string{"o-1"}, kafka.orders())
		assert.Equal(t, []string{"o-1"}, push.orders())
	})

	t.Run("Retries until success", func(t *testing.T) {
		flaky := &recordingHandler{name: "flaky", failures: 2}
		p := NewPool(Options{Workers: 1, QueueSize: 10, MaxRetry: 3, RetryBackoff: time.Millisecond}, nil, flaky)
		p.Start()
		defer p.Stop()

		p.Dispatch(events.OrderEvent{Type: events.OrderPlaced, OrderID: "o-2"})

		assert.Eventually(t, func() bool {
			return len(flaky.orders()) == 1
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, int32(3), flaky.calls.Load())
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		broken := &recordingHandler{name: "broken", failures: 100}
		p := NewPool(Options{Workers: 1, QueueSize: 10, MaxRetry: 1, RetryBackoff: time.Millisecond}, nil, broken)
		p.Start()

		p.Dispatch(events.OrderEvent{Type: events.OrderPaymentFailed, OrderID: "o-3"})

		assert.Eventually(t, func() bool {
			return broken.calls.Load() == 2
		}, 2*time.Second, 5*time.Millisecond)
		p.Stop()
		assert.Empty(t, broken.orders())
	})

	t.Run("Panicking handler does not kill worker", func(t *testing.T) {
		var calls atomic.Int32
		panicky := HandlerFunc{HandlerName: "panicky", Fn: func(context.Context, events.OrderEvent) error {
			calls.Add(1)
			panic("boom")
		}}
		p := NewPool(Options{Workers: 1, QueueSize: 10}, nil, panicky)
		p.Start()

		p.Dispatch(events.OrderEvent{OrderID: "a"})
		p.Dispatch(events.OrderEvent{OrderID: "b"})
		p.Stop()

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Dispatch after stop is dropped", func(t *testing.T) {
		h := &recordingHandler{name: "late"}
		p := NewPool(Options{Workers: 1, QueueSize: 1}, nil, h)
		p.Start()
		p.Stop()

		assert.NotPanics(t, func() {
			p.Dispatch(events.OrderEvent{OrderID: "late"})
		})
		assert.Empty(t, h.orders())
	})

	t.Run("Nil pool", func(t *testing.T) {
		var p *Pool
		assert.NotPanics(t, func() { p.Dispatch(events.OrderEvent{}) })
	})
}
