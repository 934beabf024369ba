// Package bus is an in-process publish/subscribe channel owned by the
// application root. It replaces ambient global signaling: any component may
// subscribe to task events without knowing who fired them.
package bus

import (
	"sync"

	"github.com/taskdeck/taskdeck/internal/model"
)

type EventType string

const (
	TaskAdded     EventType = "task:added"
	TaskCompleted EventType = "task:completed"
)

type Event struct {
	Type EventType
	Task model.Task
}

type Handler func(event Event)

type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches asynchronously so a slow or panicking handler cannot
// block or crash the publisher.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				_ = recover()
			}()
			h(event)
		}(handler)
	}
}

func (b *Bus) HandlerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
