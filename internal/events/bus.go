package events

import (
	"sync"
)

// bus is the default in-process EventBus. Delivery is synchronous so a
// publisher observes all recompute side effects before continuing. That
// matches the single-writer model: only mutation handlers publish.
type bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
	wildcard map[int]Handler
}

// NewBus creates an empty in-process event bus.
func NewBus() EventBus {
	return &bus{
		handlers: make(map[EventType]map[int]Handler),
		wildcard: make(map[int]Handler),
	}
}

func (b *bus) Publish(event Event) {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[event.Type])+len(b.wildcard))
	for _, h := range b.handlers[event.Type] {
		targets = append(targets, h)
	}
	for _, h := range b.wildcard {
		targets = append(targets, h)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(event)
	}
}

func (b *bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

func (b *bus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.wildcard[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wildcard, id)
	}
}
