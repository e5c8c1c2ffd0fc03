// Package market implements the simulated market feed: the periodic
// price tick, one-shot market events, and the subscriber registry that
// fans price updates out to the rest of the system.
package market

import (
	"sync"

	"github.com/rs/zerolog"
)

// Subscriber receives a notification after each completed price-update
// cycle. Update is called synchronously; implementations observe a
// committed, consistent market state.
type Subscriber interface {
	Name() string
	Update()
}

// Registry holds the ordered set of market subscribers. Subscribers are
// identified by reference and notified in registration order.
type Registry struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	log         zerolog.Logger
}

// NewRegistry creates an empty subscriber registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		log: log.With().Str("component", "subscribers").Logger(),
	}
}

// Subscribe registers a subscriber. Registering the same subscriber
// twice is a no-op.
func (r *Registry) Subscribe(s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.subscribers {
		if existing == s {
			return
		}
	}
	r.subscribers = append(r.subscribers, s)
	r.log.Debug().Str("subscriber", s.Name()).Msg("Subscriber registered")
}

// Unsubscribe removes a subscriber by reference. Unknown subscribers
// are ignored.
func (r *Registry) Unsubscribe(s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.subscribers {
		if existing == s {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			r.log.Debug().Str("subscriber", s.Name()).Msg("Subscriber removed")
			return
		}
	}
}

// Notify invokes every subscriber once, in registration order. The
// list is snapshotted first, so a subscriber unregistering itself mid
// notification cannot corrupt the iteration. A panicking subscriber is
// logged and does not block the others.
func (r *Registry) Notify() {
	r.mu.RLock()
	snapshot := make([]Subscriber, len(r.subscribers))
	copy(snapshot, r.subscribers)
	r.mu.RUnlock()

	for _, s := range snapshot {
		r.notifyOne(s)
	}
}

func (r *Registry) notifyOne(s Subscriber) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("subscriber", s.Name()).
				Interface("panic", rec).
				Msg("Subscriber panicked during update")
		}
	}()
	s.Update()
}
