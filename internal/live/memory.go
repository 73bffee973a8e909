package live

import (
	"context"
	"sync"

	"schooladmin/internal/metrics"
)

// Memory is an in-process broker. Slow subscribers miss changes rather than
// block publishers; the next change still triggers a fresh snapshot.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[chan Change]struct{}
	buffer int
}

// NewMemory creates a broker with per-subscriber buffer size.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 16
	}
	return &Memory{subs: make(map[string]map[chan Change]struct{}), buffer: buffer}
}

func (m *Memory) Publish(_ context.Context, c Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[c.Collection] {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	ch := make(chan Change, m.buffer)
	m.mu.Lock()
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[chan Change]struct{})
	}
	m.subs[collection][ch] = struct{}{}
	m.mu.Unlock()
	metrics.LiveSubscribers.Inc()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[collection], ch)
		close(ch)
		m.mu.Unlock()
		metrics.LiveSubscribers.Dec()
	}()
	return ch, nil
}

// Subscribers returns the number of open subscriptions on collection.
func (m *Memory) Subscribers(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[collection])
}
