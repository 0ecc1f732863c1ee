package services

import "sync"

type userLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes all tracker operations for one user while letting
// different users proceed in parallel. Entries are reference counted and
// removed once the last holder releases, so the map stays bounded by the
// number of in-flight users.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint]*userLock)}
}

// Lock acquires the per-user lock and returns the release function.
func (k *keyedMutex) Lock(userID uint) func() {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &userLock{}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, userID)
		}
		k.mu.Unlock()
	}
}
