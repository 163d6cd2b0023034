package events

import (
	"reflect"
	"sync"
)

// Bus is a synchronous publish/subscribe bus scoped to a single game.
// Handlers run on the publisher's goroutine in registration order, so
// subscribers observe events exactly in the order they were emitted.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]func(any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, handler func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(e any) {
		handler(e.(T))
	})
}

// Publish delivers an event to every subscriber of its type, synchronously
// and in registration order.
func Publish[T any](b *Bus, event T) {
	b.mu.RLock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	handlers := b.handlers[t]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
