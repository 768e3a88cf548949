package events

import (
	"sync"

	"github.com/robinjoseph08/golib/logger"
)

const defaultBufferSize = 256

// Bus is an in-process fan-out publisher. Delivery is at-least-once per
// subscriber while the subscriber keeps up; a subscriber whose buffer is full
// loses the event rather than blocking the publishing call. Ordering is
// preserved per publishing call site only.
type Bus struct {
	mu         sync.RWMutex
	log        logger.Logger
	subs       map[int]chan Event
	nextID     int
	bufferSize int
}

func NewBus() *Bus {
	return &Bus{
		log:        logger.New(),
		subs:       make(map[int]chan Event),
		bufferSize: defaultBufferSize,
	}
}

// Subscribe registers a new subscriber and returns its channel along with an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.bufferSize)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Publish delivers the event to every subscriber without blocking the caller.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn("event dropped for slow subscriber", logger.Data{"type": event.EventType()})
		}
	}
}
