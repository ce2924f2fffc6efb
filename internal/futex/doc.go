// Package futex implements wait/wake on a 32-bit word keyed by its address.
//
// The contract is the one of the Linux futex(2) system call:
//
//	Wait(addr, val, deadline):  sleep only if *addr == val, until woken,
//	                            the deadline passes, or a spurious wakeup.
//	Wake(addr, n):              wake up to n sleepers blocked on addr.
//
// The comparison in Wait and the enqueue of the sleeper happen atomically with
// respect to Wake. A waker that changes *addr before calling Wake can therefore
// never lose a wakeup against a sleeper that captured the old value: either the
// sleeper is already queued and gets woken, or its comparison fails and Wait
// returns immediately.
//
// Implementations:
//   - futex_linux.go: FUTEX_WAIT_PRIVATE / FUTEX_WAKE_PRIVATE via golang.org/x/sys/unix.
//     The calling goroutine blocks its OS thread inside the kernel; the Go
//     scheduler hands its P to another thread while it sleeps.
//   - futex_other.go: a hashed parking table (park.go) with the same contract,
//     built on sync.Mutex and channels.
//
// Callers must keep the word at a stable address for as long as anybody may
// wait on it. Go heap objects are never moved by the garbage collector, so a
// field of a heap-allocated struct qualifies; the struct must not be copied.
package futex
