package events

import (
	"log"
	"sync"
)

// Handler processes one published event payload. A panicking handler is
// recovered and logged; it never stops delivery to later handlers and
// never reaches the publisher.
type Handler func(payload any)

type subscription struct {
	id      int64
	handler Handler
	once    bool
}

// Bus is a named-event pub/sub channel. Delivery is synchronous and in
// subscription order within one event name; Publish returns only after
// every handler has run. No ordering is guaranteed across distinct names.
type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   map[string][]*subscription
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]*subscription),
	}
}

// Subscribe registers a handler for an event name and returns a function
// that removes it. Unsubscribing during a Publish does not affect the
// delivery round already in flight.
func (b *Bus) Subscribe(name string, handler Handler) func() {
	return b.add(name, handler, false)
}

// SubscribeOnce registers a handler invoked at most once. The handler is
// removed from the registry atomically with being picked up for delivery,
// so a second Publish can never fire it again.
func (b *Bus) SubscribeOnce(name string, handler Handler) func() {
	return b.add(name, handler, true)
}

func (b *Bus) add(name string, handler Handler, once bool) func() {
	if handler == nil {
		log.Printf("EventBus: ignoring nil handler for event %s", name)
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, once: once}
	b.subs[name] = append(b.subs[name], sub)

	id := sub.id
	return func() {
		b.remove(name, id)
	}
}

func (b *Bus) remove(name string, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		b.subs[name] = append(subs[:i], subs[i+1:]...)
		return
	}
}

// Publish delivers payload to every handler subscribed to name, in
// subscription order, on the caller's goroutine. Handlers subscribed
// during this delivery round are not invoked until the next Publish.
func (b *Bus) Publish(name string, payload any) {
	b.mu.Lock()
	subs := b.subs[name]
	snapshot := make([]*subscription, len(subs))
	copy(snapshot, subs)

	// Drop once-subscriptions from the registry before invoking them so
	// removal is atomic with this delivery round.
	remaining := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		if !s.once {
			remaining = append(remaining, s)
		}
	}
	b.subs[name] = remaining
	b.mu.Unlock()

	for _, s := range snapshot {
		b.dispatch(name, s, payload)
	}
}

func (b *Bus) dispatch(name string, s *subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("EventBus: handler for event %s panicked: %v", name, r)
		}
	}()

	s.handler(payload)
}

// Clear removes every subscription for the given names, or all
// subscriptions when called with no arguments.
func (b *Bus) Clear(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(names) == 0 {
		b.subs = make(map[string][]*subscription)
		return
	}
	for _, name := range names {
		delete(b.subs, name)
	}
}

// HasSubscribers reports whether any handler is registered for name
func (b *Bus) HasSubscribers(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name]) > 0
}
