package condition

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kolkov/threadsync/internal/futex"
)

// All passed to Pulse wakes every waiter.
const All = futex.All

// Status is the outcome of a bounded wait.
type Status int

const (
	// NoTimeout means the wait ended because of a notification or a
	// spurious wakeup. The guarded predicate may still be false.
	NoTimeout Status = iota
	// Timeout means the deadline passed before a notification arrived.
	Timeout
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case NoTimeout:
		return "no_timeout"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

// Lock is a no-op used by the -copylocks checker of go vet.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Condition is a condition variable whose waiters sleep on a futex keyed by
// an internal generation counter.
//
// The zero value is ready to use. A Condition must not be copied after first
// use, because sleepers are keyed by the address of its state word.
//
// Thread Safety: All methods are safe for concurrent use. Wait, WaitUntil and
// WaitFor require the caller to hold the lock it passes in.
type Condition struct {
	_ noCopy

	// state is the generation counter. Only accessed atomically; its address
	// is the futex key.
	state uint32
}

// Wait atomically releases l and suspends the caller until the next Pulse
// (or a spurious wakeup), then reacquires l before returning.
//
// Parameters:
//   - l: The lock guarding the predicate; held by the caller on entry and on return
func (c *Condition) Wait(l sync.Locker) {
	c.wait(l, time.Time{})
}

// WaitUntil is Wait bounded by an absolute deadline.
//
// A deadline that has already passed (including the zero time) returns
// Timeout immediately, without releasing l.
//
// Returns:
//   - Status: Timeout if the deadline passed first, NoTimeout otherwise
func (c *Condition) WaitUntil(l sync.Locker, deadline time.Time) Status {
	if !time.Now().Before(deadline) {
		return Timeout
	}
	return c.wait(l, deadline)
}

// WaitFor is WaitUntil with a deadline d from now.
func (c *Condition) WaitFor(l sync.Locker, d time.Duration) Status {
	if d <= 0 {
		return Timeout
	}
	return c.wait(l, time.Now().Add(d))
}

// wait is the shared body of the waits. A zero deadline waits forever.
func (c *Condition) wait(l sync.Locker, deadline time.Time) Status {
	// The snapshot must be taken while l is held: any Pulse issued after the
	// caller observed its predicate as false happens after this load.
	gen := atomic.LoadUint32(&c.state)

	l.Unlock()
	timedOut := futex.Wait(&c.state, gen, deadline)
	l.Lock()

	if timedOut {
		return Timeout
	}
	return NoTimeout
}

// Pulse publishes a new generation and wakes up to n waiters. n <= 0 or
// n >= All wakes everybody.
//
// Pulse may be called with or without the waiters' lock held; waiters always
// re-check their predicate under the lock. It never blocks and cannot fail.
func (c *Condition) Pulse(n int) {
	atomic.AddUint32(&c.state, 1)
	futex.Wake(&c.state, n)
}

// Signal wakes one waiter.
func (c *Condition) Signal() {
	c.Pulse(1)
}

// Broadcast wakes all waiters.
func (c *Condition) Broadcast() {
	c.Pulse(All)
}
