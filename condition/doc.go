// Package condition implements a futex-backed condition variable.
//
// A Condition is bound to whatever sync.Locker the caller passes to each wait,
// in the style of Mesa monitors: the lock is an explicit argument of Wait so
// that the side effect on it is visible at the call site.
//
// # Lost-wakeup avoidance
//
// The only state of a Condition is a 32-bit generation counter:
//
//	Wait(l):   g := state      (l held)
//	           l.Unlock()
//	           futex-wait while state == g
//	           l.Lock()
//
//	Pulse(n):  state++
//	           futex-wake n sleepers
//
// A notifier that runs between the waiter's l.Unlock and its futex call has
// already advanced the counter, so the futex call compares against a stale
// snapshot and returns at once instead of sleeping through the notification.
// The counter is a generation number only; its value has no meaning to callers
// and it is allowed to wrap.
//
// # Usage
//
// Wait may return spuriously, so it is always called in a loop that re-checks
// the predicate guarded by the lock:
//
//	var (
//		mu    sync.Mutex
//		cond  condition.Condition
//		ready bool
//	)
//
//	// Waiter
//	mu.Lock()
//	for !ready {
//		cond.Wait(&mu)
//	}
//	mu.Unlock()
//
//	// Notifier
//	mu.Lock()
//	ready = true
//	mu.Unlock()
//	cond.Broadcast()
//
// With a deadline:
//
//	mu.Lock()
//	for !ready {
//		if cond.WaitUntil(&mu, deadline) == condition.Timeout {
//			break
//		}
//	}
//	ok := ready
//	mu.Unlock()
//
// Blocking waits park the calling OS thread in the kernel on Linux, so each
// waiter holds one OS thread and the number of simultaneous waiters is bounded
// by debug.SetMaxThreads (10000 by default). Timeouts are a normal outcome
// reported through Status, never an error.
package condition
