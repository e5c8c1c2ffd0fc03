// Package locks provides per-key mutual exclusion for independently
// lockable resources (one lock per asset symbol, one per user id).
package locks

import (
	"context"
	"sync"

	"github.com/jperaltad/tradesim/internal/domain"
)

// KeyedMutex hands out one mutex per key. Orders touching different
// keys proceed fully in parallel; orders on the same key serialize.
// Entries are never removed: the key space is bounded by the number of
// symbols and users in the store.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewKeyedMutex creates an empty keyed mutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]chan struct{}),
	}
}

func (k *KeyedMutex) sem(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	sem, ok := k.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		k.locks[key] = sem
	}
	return sem
}

// Acquire blocks until the lock for key is held or ctx expires.
// On success it returns a release function that must be called exactly
// once. On timeout or cancellation it returns domain.ErrBusy.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	sem := k.sem(key)

	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-sem })
		}, nil
	case <-ctx.Done():
		return nil, domain.ErrBusy
	}
}
