package eventbus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/presidium/internal/ports/secondary"
)

func event(name, aggregateID string) secondary.PublishedEvent {
	return secondary.PublishedEvent{
		ID:            "EVT-" + name,
		Name:          name,
		AggregateType: "session",
		AggregateID:   aggregateID,
		CommitteeID:   "COM-001",
		Visibility:    "public",
		Payload:       map[string]any{"sessionId": aggregateID},
	}
}

func receive(t *testing.T, ch <-chan secondary.PublishedEvent) secondary.PublishedEvent {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return secondary.PublishedEvent{}
}

func TestBus_PublishDeliversByName(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New(2, nil, nil)
	defer bus.Stop()

	_, started := bus.Subscribe("session-started")
	_, paused := bus.Subscribe("session-paused")

	require.NoError(t, bus.Publish(context.Background(), event("session-started", "SES-001")))

	evt := receive(t, started)
	assert.Equal(t, "SES-001", evt.AggregateID)

	select {
	case evt := <-paused:
		t.Fatalf("unexpected delivery to other name: %s", evt.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_AllEventsSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New(1, nil, nil)
	defer bus.Stop()

	_, all := bus.Subscribe(AllEvents)
	bus.Deliver(event("vote-cast", "VOT-001"))
	bus.Deliver(event("voting-completed", "VOT-001"))

	assert.Equal(t, "vote-cast", receive(t, all).Name)
	assert.Equal(t, "voting-completed", receive(t, all).Name)
}

func TestBus_SubscribeFuncAndUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New(1, nil, nil)
	defer bus.Stop()

	var calls atomic.Int32
	id := bus.SubscribeFunc("timer-updated", func(secondary.PublishedEvent) {
		calls.Add(1)
	})

	bus.Deliver(event("timer-updated", "SES-001"))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	bus.Unsubscribe("timer-updated", id)
	bus.Deliver(event("timer-updated", "SES-001"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBus_StopClosesSubscribersAndRejectsPublish(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New(3, nil, nil)
	_, ch := bus.Subscribe("session-completed")

	bus.Stop()
	bus.Stop()

	_, ok := <-ch
	assert.False(t, ok, "subscriber channel should be closed")
	assert.ErrorIs(t, bus.Publish(context.Background(), event("session-completed", "SES-001")), ErrStopped)
}

type panickingSubscriber struct{ closed atomic.Bool }

func (p *panickingSubscriber) Deliver(secondary.PublishedEvent) error { panic("boom") }
func (p *panickingSubscriber) Close()                                 { p.closed.Store(true) }

func TestBus_Metrics(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := prometheus.NewRegistry()
	bus := New(1, registry, nil)
	defer bus.Stop()

	_, ch := bus.Subscribe("vote-cast")
	bad := &panickingSubscriber{}
	bus.Register("vote-cast", bad)
	assert.Equal(t, float64(2), testutil.ToFloat64(bus.metrics.subscribers.WithLabelValues("vote-cast")))

	bus.Deliver(event("vote-cast", "VOT-001"))
	receive(t, ch)

	assert.True(t, bad.closed.Load(), "failing subscriber should be removed")
	assert.Equal(t, float64(1), testutil.ToFloat64(bus.metrics.subscribers.WithLabelValues("vote-cast")))
	assert.Equal(t, float64(1), testutil.ToFloat64(bus.metrics.delivered.WithLabelValues("vote-cast")))
	assert.Equal(t, float64(1), testutil.ToFloat64(bus.metrics.deliveryErrors.WithLabelValues("vote-cast", "subscriber_failed")))
}

func TestBus_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := prometheus.NewRegistry()
	bus := New(1, registry, nil)
	defer bus.Stop()

	_, ch := bus.Subscribe("attendance-updated")
	for range SubscriberQueueSize + 5 {
		bus.Deliver(event("attendance-updated", "SES-001"))
	}

	assert.Len(t, ch, SubscriberQueueSize)
	assert.Equal(t, float64(5), testutil.ToFloat64(bus.metrics.deliveryErrors.WithLabelValues("attendance-updated", "subscriber_full")))
}
