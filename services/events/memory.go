package events

import (
	"context"
	"sync"

	"github.com/submitly/backend/core"
)

type Event struct {
	Key   string
	Value interface{}
}

// MemoryPublisher records published events. Used when no broker is configured and in tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

var _ core.EventPublisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Key: key, Value: event})
	return nil
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}
