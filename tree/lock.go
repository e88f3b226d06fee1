package tree

import (
	"sync"

	"dfs.io/errors"
)

// Lock is a reader/writer lock augmented with held-mode bookkeeping so
// that Unlock can report the spec's argument error for a call that does
// not match a held Lock, rather than silently doing nothing.
type Lock struct {
	rw sync.RWMutex

	// book guards the fields below, which track the modes currently held
	// on this lock, summed over all holders. It is deliberately a
	// separate mutex from rw: rw may be held by other goroutines while
	// we adjust bookkeeping for our own acquisition/release.
	book          sync.Mutex
	exclusiveHeld bool
	sharedCount   int
}

// NewLock returns a new, unlocked Lock.
func NewLock() *Lock {
	return &Lock{}
}

// Lock acquires the node's lock in shared or exclusive mode.
func (l *Lock) Lock(exclusive bool) {
	if exclusive {
		l.rw.Lock()
		l.book.Lock()
		l.exclusiveHeld = true
		l.book.Unlock()
		return
	}
	l.rw.RLock()
	l.book.Lock()
	l.sharedCount++
	l.book.Unlock()
}

// Unlock releases the node's lock in shared or exclusive mode. It returns
// an argument error if the mode does not match a currently held lock of
// that mode (unlocking a path that was not locked, or a mismatched mode).
func (l *Lock) Unlock(exclusive bool) error {
	const op = "tree.Unlock"
	l.book.Lock()
	if exclusive {
		if !l.exclusiveHeld {
			l.book.Unlock()
			return errors.E(op, errors.Invalid, errors.Str("unlock: not exclusively locked"))
		}
		l.exclusiveHeld = false
		l.book.Unlock()
		l.rw.Unlock()
		return nil
	}
	if l.sharedCount == 0 {
		l.book.Unlock()
		return errors.E(op, errors.Invalid, errors.Str("unlock: not shared locked"))
	}
	l.sharedCount--
	l.book.Unlock()
	l.rw.RUnlock()
	return nil
}

// RLockTransient acquires and releases a shared lock for the duration of
// fn, used by tree traversal to safely read a directory's children map
// without participating in the client-visible lock/unlock protocol.
func (l *Lock) RLockTransient(fn func()) {
	l.rw.RLock()
	defer l.rw.RUnlock()
	fn()
}
