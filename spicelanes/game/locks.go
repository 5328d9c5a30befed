package game

import "sync"

// lockKeeper hands out one mutex per key so every state transition for a
// given account (or market pool) is linearizable. Locks are never removed;
// the key space is bounded by the player population.
type lockKeeper struct {
	locks sync.Map
}

func (k *lockKeeper) acquire(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
