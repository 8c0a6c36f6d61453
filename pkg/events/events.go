package events

import (
	"sync"
	"time"

	"github.com/clustermaster/masterd/pkg/types"
)

// EventType identifies the kind of message framed onto a scheduler's
// subscribed stream.
type EventType string

const (
	EventSubscribed EventType = "SUBSCRIBED"
	EventHeartbeat  EventType = "HEARTBEAT"
	EventOffers     EventType = "OFFERS"
	EventRescind    EventType = "RESCIND"
	EventUpdate     EventType = "UPDATE"
	EventMessage    EventType = "MESSAGE"
	EventFailure    EventType = "FAILURE"
)

// Event is one message destined for exactly one subscribed framework's
// stream.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// Subscriber is the channel a framework's HTTP handler drains to produce
// its recordio-framed response body.
type Subscriber chan *Event

// Broker fans events out to subscribed frameworks. Unlike a topic-style
// pub/sub, each framework has exactly one live subscription at a time:
// subscribing again (a re-subscribe) replaces the previous one.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[types.FrameworkID]Subscriber
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[types.FrameworkID]Subscriber)}
}

// Subscribe registers a new stream for id, buffered so that a burst of
// offers does not block the actor that published them. Any previous
// subscription for id is closed and replaced.
func (b *Broker) Subscribe(id types.FrameworkID) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[id]; ok {
		close(old)
	}
	sub := make(Subscriber, 64)
	b.subscribers[id] = sub
	return sub
}

// Unsubscribe closes and removes id's stream, if any.
func (b *Broker) Unsubscribe(id types.FrameworkID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub)
	}
}

// Send delivers event to a single framework's stream. It does not block:
// a full subscriber buffer means that framework's consumer is too slow,
// and the event is dropped rather than stalling the publisher.
func (b *Broker) Send(id types.FrameworkID, event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	sub, ok := b.subscribers[id]
	b.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case sub <- event:
	default:
	}
}

// Broadcast delivers event to every framework named in ids.
func (b *Broker) Broadcast(event *Event, ids ...types.FrameworkID) {
	for _, id := range ids {
		b.Send(id, event)
	}
}

// IsSubscribed reports whether id currently has a live stream.
func (b *Broker) IsSubscribed(id types.FrameworkID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[id]
	return ok
}

// SubscriberCount returns the number of frameworks with a live stream.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
