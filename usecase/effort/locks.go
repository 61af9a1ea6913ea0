package effort

import "sync"

// effortLocks serializes read-modify-write sequences per effort id.
// The lock is not held across the external payout call; the persisted
// concluded state is what rejects reentrant transitions.
type effortLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newEffortLocks() *effortLocks {
	return &effortLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *effortLocks) lock(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
