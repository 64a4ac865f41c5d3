package board

import (
	"sync"

	"todoboard/pkg/task"
)

// Change describes one finished store operation. IDs is empty when the
// operation failed; the error is then available from Store.Err(Op).
type Change struct {
	Op  Op
	IDs []task.ID
}

// bus fans changes out to subscribers without blocking the writer.
type bus struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

func newBus() *bus {
	return &bus{subs: make(map[chan Change]struct{})}
}

func (b *bus) publish(c Change) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
			// subscriber is behind; it will catch up on the next change
		}
	}
	b.mu.RUnlock()
}

// Subscribe returns a buffered channel notified after every applied or failed
// operation. Sends never block, so a subscriber that lets the buffer fill
// misses notifications and should re-read Tasks and Err when it catches up.
func (s *Store) Subscribe() chan Change {
	ch := make(chan Change, 16)
	s.bus.mu.Lock()
	s.bus.subs[ch] = struct{}{}
	s.bus.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Channels that are
// not subscribed, including ones already unsubscribed, are left alone.
func (s *Store) Unsubscribe(ch chan Change) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[ch]; !ok {
		return
	}
	delete(s.bus.subs, ch)
	close(ch)
}
