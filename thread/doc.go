// Package thread runs functions on dedicated, named OS threads.
//
// A Thread is an owning handle to one goroutine that is locked to its own
// OS thread for its whole life (runtime.LockOSThread without a matching
// unlock), so that per-thread attributes such as the kernel-visible name and
// the scheduling priority apply to exactly that body and are discarded with
// the thread when it exits.
//
// Two spawn modes exist:
//
//   - Join: Finalize blocks until the body returns and reports a panic in
//     the body as a *PanicError.
//   - Detach: Finalize releases the handle without waiting; the caller
//     synchronizes with the body by other means.
//
// # Ownership
//
// A handle has exactly one owner. Take moves it into a new Thread and leaves
// the source empty; Assign finalizes the destination's current handle before
// taking over the source's. A Thread that is never finalized is not joined:
// callers pair every spawn with a Finalize, usually deferred:
//
//	t, err := thread.Join(work, "decoder", thread.WithPriority(thread.High))
//	if err != nil {
//		return err
//	}
//	defer t.Finalize()
//
// # Platform behaviour
//
// On Linux the name is set with prctl(PR_SET_NAME) and truncated to 15 bytes.
// High and Realtime first try SCHED_FIFO and fall back to a negative nice
// value when that is refused; Low lowers the nice value. Normal leaves
// scheduling untouched. A thread whose name or priority cannot be applied
// still runs; the failure is logged at warn level. Other platforms run every
// thread with default attributes.
//
// CurrentHandle and SetCurrentName expose the same facilities to a goroutine
// that locked its own thread without going through Join or Detach.
//
// # Budget
//
// Live threads are counted against a Limiter (DefaultLimiter unless
// WithLimiter says otherwise). Spawning beyond the budget fails with
// ErrResourceExhausted instead of letting the runtime abort the process at
// its own thread limit.
package thread
