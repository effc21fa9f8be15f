// Package eventbus carries the process-internal signals of the watcher:
// cycle outcomes from the poll loop and delivery outcomes from the notifier.
// The journal writer subscribes to the subset it records.
package eventbus

import (
	"sync"
	"time"
)

// Event types published in this process.
const (
	CycleOK       = "cycle.ok"       // valid response, verdict unchanged
	CycleEmpty    = "cycle.empty"    // valid response, no homework
	CycleError    = "cycle.error"    // cycle failed (diagnostic path)
	StatusChanged = "status.changed" // new verdict announced
	NotifySent    = "notify.sent"    // delivery succeeded
	NotifyFailed  = "notify.failed"  // delivery failed (swallowed)
)

type Event struct {
	Type string
	Time time.Time
	Data any
}

// Bus fans events out to subscriptions. Publish never blocks: a subscriber
// that falls behind its buffer loses events rather than stalling the poll
// loop.
type Bus interface {
	Publish(e Event)
	// Subscribe registers a buffered subscription. With no types listed it
	// receives every event; otherwise only the listed types.
	Subscribe(buffer int, types ...string) *Subscription
}

// Subscription delivers matching events on C until Close.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	types  map[string]struct{}
	cancel func()
	once   sync.Once
}

func (s *Subscription) Close() { s.once.Do(s.cancel) }

func (s *Subscription) wants(typ string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[typ]
	return ok
}

func New() Bus {
	return &memBus{subs: make(map[*Subscription]struct{})}
}

type memBus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Publish sends under the lock; Close removes the subscription under the
// same lock before closing its channel, so a send on a closed channel
// cannot happen.
func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if !sub.wants(e.Type) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
		}
	}
}

func (b *memBus) Subscribe(buffer int, types ...string) *Subscription {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}
	sub.cancel = func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		close(ch)
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}
