// Package eventbus is the in-process broadcaster for domain events. Services
// publish persisted events here; subscribers (CLI watchers, tests, future
// transports) receive them asynchronously by event name.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/presidium/internal/ports/secondary"
)

const (
	SubscriberQueueSize = 20
	AsyncQueueSize      = 1000
	DefaultWorkers      = 4

	// AllEvents subscribes to every event name.
	AllEvents = "*"
)

var (
	ErrStopped    = errors.New("event bus stopped")
	ErrQueueFull  = errors.New("event bus queue full")
	errSubscriber = errors.New("subscriber queue full")
)

type SubscriberID int

type HandlerFunc func(secondary.PublishedEvent)

// Subscriber receives delivered events. Close must be idempotent.
type Subscriber interface {
	Deliver(secondary.PublishedEvent) error
	Close()
}

type busMetrics struct {
	published      *prometheus.CounterVec
	delivered      *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

// Bus fans events out to subscribers from a pool of async workers.
type Bus struct {
	subscribers map[string]map[SubscriberID]Subscriber
	lastSubID   SubscriberID
	mu          sync.RWMutex

	metrics *busMetrics
	logger  *slog.Logger

	queue   chan secondary.PublishedEvent
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped bool
	stopMu  sync.RWMutex
}

// New creates a Bus and starts its workers. A nil registry disables metrics.
func New(workers int, registry prometheus.Registerer, logger *slog.Logger) *Bus {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Bus{
		subscribers: make(map[string]map[SubscriberID]Subscriber),
		logger:      logger.With("component", "eventbus"),
		queue:       make(chan secondary.PublishedEvent, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if registry != nil {
		b.initMetrics(registry)
	}
	for range workers {
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

func (b *Bus) initMetrics(registry prometheus.Registerer) {
	factory := promauto.With(registry)
	b.metrics = &busMetrics{
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_events_published_total",
			Help: "Events accepted for asynchronous delivery",
		}, []string{"name"}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_events_delivered_total",
			Help: "Events fanned out to subscribers",
		}, []string{"name"}),
		deliveryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_event_delivery_errors_total",
			Help: "Events dropped or failed during delivery",
		}, []string{"name", "reason"}),
		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "presidium_event_subscribers",
			Help: "Active subscribers by event name",
		}, []string{"name"}),
	}
}

func (b *Bus) worker() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		case evt := <-b.queue:
			b.Deliver(evt)
		}
	}
}

// Publish enqueues an event for asynchronous delivery and returns immediately.
func (b *Bus) Publish(_ context.Context, evt secondary.PublishedEvent) error {
	b.stopMu.RLock()
	defer b.stopMu.RUnlock()
	if b.stopped {
		return ErrStopped
	}

	select {
	case b.queue <- evt:
		if b.metrics != nil {
			b.metrics.published.WithLabelValues(evt.Name).Inc()
		}
		return nil
	default:
		b.logger.Warn("event queue full, dropping event", "event", evt.Name, "aggregate", evt.AggregateID)
		b.countError(evt.Name, "queue_full")
		return ErrQueueFull
	}
}

// Deliver fans an event out synchronously to subscribers of its name and of
// AllEvents. Subscribers that fail for any reason other than a full queue are
// removed.
func (b *Bus) Deliver(evt secondary.PublishedEvent) {
	type item struct {
		name string
		id   SubscriberID
		sub  Subscriber
	}

	b.mu.RLock()
	var targets []item
	for _, name := range []string{evt.Name, AllEvents} {
		for id, sub := range b.subscribers[name] {
			targets = append(targets, item{name: name, id: id, sub: sub})
		}
	}
	b.mu.RUnlock()

	for _, t := range targets {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("subscriber panic: %v", r)
				}
			}()
			err = t.sub.Deliver(evt)
		}()

		switch {
		case err == nil:
		case errors.Is(err, errSubscriber):
			b.countError(evt.Name, "subscriber_full")
			b.logger.Debug("subscriber queue full, event dropped", "event", evt.Name, "subscriber", t.id)
		default:
			b.countError(evt.Name, "subscriber_failed")
			b.logger.Debug("event delivery error", "event", evt.Name, "subscriber", t.id, "error", err)
			b.Unsubscribe(t.name, t.id)
		}
	}

	if b.metrics != nil {
		b.metrics.delivered.WithLabelValues(evt.Name).Inc()
	}
}

// Subscribe returns a buffered channel receiving events with the given name.
func (b *Bus) Subscribe(name string) (SubscriberID, <-chan secondary.PublishedEvent) {
	sub := newChannelSubscriber(SubscriberQueueSize)
	id := b.Register(name, sub)
	return id, sub.ch
}

// SubscribeFunc calls fn for each event with the given name on its own goroutine.
// The goroutine exits when the subscription is removed or the bus stops.
func (b *Bus) SubscribeFunc(name string, fn HandlerFunc) SubscriberID {
	id, ch := b.Subscribe(name)
	go func() {
		for evt := range ch {
			fn(evt)
		}
	}()
	return id
}

// Register adds an external Subscriber implementation.
func (b *Bus) Register(name string, sub Subscriber) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSubID++
	id := b.lastSubID
	if _, ok := b.subscribers[name]; !ok {
		b.subscribers[name] = make(map[SubscriberID]Subscriber)
	}
	b.subscribers[name][id] = sub
	if b.metrics != nil {
		b.metrics.subscribers.WithLabelValues(name).Inc()
	}
	return id
}

// Unsubscribe removes and closes a subscriber. Unknown ids are ignored.
func (b *Bus) Unsubscribe(name string, id SubscriberID) {
	b.mu.Lock()
	sub, ok := b.subscribers[name][id]
	if ok {
		delete(b.subscribers[name], id)
		if len(b.subscribers[name]) == 0 {
			delete(b.subscribers, name)
		}
		if b.metrics != nil {
			b.metrics.subscribers.WithLabelValues(name).Dec()
		}
	}
	b.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// Stop halts the workers and closes every subscriber. Queued events that were
// not yet delivered are discarded. Safe to call more than once.
func (b *Bus) Stop() {
	b.stopMu.Lock()
	if b.stopped {
		b.stopMu.Unlock()
		return
	}
	b.stopped = true
	close(b.stopCh)
	b.stopMu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[string]map[SubscriberID]Subscriber)
	b.mu.Unlock()

	for _, byID := range subs {
		for _, sub := range byID {
			sub.Close()
		}
	}
	if b.metrics != nil {
		b.metrics.subscribers.Reset()
	}
	b.logger.Debug("event bus stopped")
}

func (b *Bus) countError(name, reason string) {
	if b.metrics != nil {
		b.metrics.deliveryErrors.WithLabelValues(name, reason).Inc()
	}
}

// channelSubscriber delivers into a buffered channel without blocking the
// worker; a full buffer drops the event.
type channelSubscriber struct {
	ch     chan secondary.PublishedEvent
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{ch: make(chan secondary.PublishedEvent, buffer)}
}

func (c *channelSubscriber) Deliver(evt secondary.PublishedEvent) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
		return errSubscriber
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

var _ secondary.EventPublisher = (*Bus)(nil)
