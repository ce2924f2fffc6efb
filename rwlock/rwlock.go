// Package rwlock implements a writer-preferring reader/writer lock.
//
// The lock state is a single reference count guarded by an internal mutex:
//
//	refcount == 0    unlocked
//	refcount  > 0    held by refcount readers
//	refcount == -1   held by one writer
//
// Waiting readers and writers sleep on two separate condition variables.
//
// # Writer preference
//
// A reader blocks not only while a writer holds the lock but also while any
// writer is waiting for it, so a steady stream of readers cannot starve
// writers. The policy is applied again at release time: Unlock hands the lock
// to one waiting writer before it considers waking readers.
//
// The lock is not recursive and not FIFO: among readers, and among writers,
// the order of acquisition is up to the scheduler.
//
// # Blocking
//
// A goroutine blocked in RLock or Lock parks its OS thread in the kernel
// (futex on Linux) instead of yielding to the Go scheduler, so every blocked
// goroutine holds one OS thread. The runtime aborts the process once more than
// debug.SetMaxThreads threads exist (10000 by default); keep the number of
// simultaneously blocked goroutines well below that.
//
// Example:
//
//	l := rwlock.New()
//
//	l.RLock()
//	v := cache[key]
//	l.RUnlock()
//
//	l.Lock()
//	cache[key] = v2
//	l.Unlock()
package rwlock

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/kolkov/threadsync/condition"
	"github.com/kolkov/threadsync/hb"
)

// ErrNotLocked is the panic value of Unlock on a lock nobody holds.
var ErrNotLocked = errors.New("rwlock: unlock of unlocked RWLock")

// writerHeld is the refcount of a write-locked RWLock.
const writerHeld = -1

// Option configures an RWLock.
type Option func(*RWLock)

// WithTracer reports every acquire and release of the lock to t.
// Readers release with ReleaseMerge, writers with Release.
func WithTracer(t hb.Tracer) Option {
	return func(l *RWLock) {
		l.tracer = t
	}
}

// RWLock is a non-recursive, writer-preferring shared/exclusive lock.
//
// The zero value is an unlocked RWLock without tracing. An RWLock must not be
// copied after first use.
//
// Thread Safety: All methods are safe for concurrent use.
type RWLock struct {
	mu      sync.Mutex
	readers condition.Condition
	writers condition.Condition

	waitingReaders int
	waitingWriters int
	refcount       int

	tracer hb.Tracer
}

// New returns an unlocked RWLock.
func New(opts ...Option) *RWLock {
	l := &RWLock{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RLock acquires the lock for reading.
//
// It blocks while a writer holds the lock or while any writer is waiting for it.
func (l *RWLock) RLock() {
	l.mu.Lock()
	for l.refcount < 0 || l.waitingWriters > 0 {
		l.waitingReaders++
		l.readers.Wait(&l.mu)
		l.waitingReaders--
	}
	l.refcount++
	l.acquired()
	l.mu.Unlock()
}

// TryRLock acquires the lock for reading if that is possible without blocking.
// It has no side effect when it returns false.
func (l *RWLock) TryRLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.refcount < 0 || l.waitingWriters > 0 {
		return false
	}
	l.refcount++
	l.acquired()
	return true
}

// Lock acquires the lock for writing. It blocks while anybody holds the lock.
func (l *RWLock) Lock() {
	l.mu.Lock()
	for l.refcount != 0 {
		l.waitingWriters++
		l.writers.Wait(&l.mu)
		l.waitingWriters--
	}
	l.refcount = writerHeld
	l.acquired()
	l.mu.Unlock()
}

// TryLock acquires the lock for writing if that is possible without blocking.
// It has no side effect when it returns false.
func (l *RWLock) TryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.refcount != 0 {
		return false
	}
	l.refcount = writerHeld
	l.acquired()
	return true
}

// Unlock releases one hold on the lock, read or write.
//
// When the lock becomes free and a writer is waiting, exactly one writer is
// woken. Otherwise, if readers are waiting and no writer is, all readers are
// woken.
//
// Unlock panics with ErrNotLocked if the lock is not held.
func (l *RWLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.refcount > 0:
		l.released(true)
		l.refcount--
	case l.refcount == writerHeld:
		l.released(false)
		l.refcount = 0
	default:
		panic(ErrNotLocked)
	}

	if l.waitingWriters > 0 {
		if l.refcount == 0 {
			l.writers.Signal()
		}
	} else if l.waitingReaders > 0 {
		l.readers.Broadcast()
	}
}

// RUnlock releases a read hold. It is Unlock under the name sync.RWMutex
// users expect.
func (l *RWLock) RUnlock() {
	l.Unlock()
}

// RLocker returns a sync.Locker whose Lock and Unlock call RLock and RUnlock.
func (l *RWLock) RLocker() sync.Locker {
	return (*rlocker)(l)
}

type rlocker RWLock

func (r *rlocker) Lock()   { (*RWLock)(r).RLock() }
func (r *rlocker) Unlock() { (*RWLock)(r).RUnlock() }

// State is a point-in-time snapshot of the lock's bookkeeping.
type State struct {
	// Readers is the number of active readers.
	Readers int
	// Writer is true while a writer holds the lock.
	Writer bool
	// WaitingReaders is the number of readers blocked in RLock.
	WaitingReaders int
	// WaitingWriters is the number of writers blocked in Lock.
	WaitingWriters int
}

// Snapshot returns the current state. The result may be stale as soon as it
// is returned; it is meant for tests, metrics and debugging.
func (l *RWLock) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := State{
		Writer:         l.refcount == writerHeld,
		WaitingReaders: l.waitingReaders,
		WaitingWriters: l.waitingWriters,
	}
	if l.refcount > 0 {
		s.Readers = l.refcount
	}
	return s
}

// acquired reports an acquire edge. The caller holds l.mu.
func (l *RWLock) acquired() {
	if l.tracer != nil {
		l.tracer.Acquire(uintptr(unsafe.Pointer(l)))
	}
}

// released reports a release edge. The caller holds l.mu.
func (l *RWLock) released(shared bool) {
	if l.tracer == nil {
		return
	}
	if shared {
		l.tracer.ReleaseMerge(uintptr(unsafe.Pointer(l)))
	} else {
		l.tracer.Release(uintptr(unsafe.Pointer(l)))
	}
}
