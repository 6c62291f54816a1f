package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Bus fans events out to subscribers. Each subscriber owns a buffered
// channel; a full buffer drops the event for that subscriber only.
type Bus struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[int]chan Event),
	}
}

// Subscribe registers a listener with the given buffer size. The returned
// cancel func unregisters and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish stamps the event and delivers it without blocking.
func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("event dropped", zap.String("kind", string(ev.Kind)))
		}
	}
}
