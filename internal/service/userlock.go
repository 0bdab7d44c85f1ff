// Package service contains the application services that sit between
// the HTTP handlers and the store.
package service

import "sync"

// userLock serializes multi-step tree mutations per user. A cascading
// delete touches several documents in separate transactions; holding
// the owner's lock keeps concurrent cascades and creates from
// interleaving on the same tree. Different users never contend.
type userLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// treeLocks is shared by the category and bookmark services: a bookmark
// create or refile takes the same lock as the cascade, so a category
// verified to exist cannot be deleted before the write lands.
var treeLocks = newUserLock()

func newUserLock() *userLock {
	return &userLock{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for a user, creating it on first use.
// The returned function releases it.
func (l *userLock) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
