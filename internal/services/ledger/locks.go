package ledger

import (
	"sync"

	"github.com/mcoot/dutyledger/internal/model"
)

// lockTable hands out one mutex per person. Entries are reference counted
// and dropped when the last holder or waiter releases them.
type lockTable struct {
	mu    sync.Mutex
	locks map[model.PersonID]*personLock
}

type personLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[model.PersonID]*personLock)}
}

// Lock blocks until the person's lock is held and returns its release func
func (t *lockTable) Lock(id model.PersonID) func() {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &personLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}

// size is the number of persons with a held or awaited lock
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
