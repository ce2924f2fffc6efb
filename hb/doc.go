// Package hb audits happens-before ordering across goroutines with vector clocks.
//
// The primitives in this module promise that a release (Unlock, the last
// arrival at a barrier) happens-before the matching acquire (Lock, leaving the
// barrier). Package hb checks that promise from the outside: the primitives
// report their acquire/release edges to a Tracer, the code under test reports
// its accesses to shared variables, and an Auditor flags every pair of
// accesses that the reported edges leave unordered.
//
// Key Concepts:
//
// Vector clocks:
//   - Every goroutine t owns a VectorClock Ct; Ct[t] is its own logical time
//   - Every synchronization object m owns a release clock Lm
//
// Synchronization edges:
//
//	Acquire(m):       Ct := Ct ⊔ Lm
//	Release(m):       Lm := Ct;       Ct[t]++
//	ReleaseMerge(m):  Lm := Lm ⊔ Ct;  Ct[t]++
//
// ReleaseMerge is used where several holders release the same object without
// excluding each other: readers of an RWLock, arrivals at a barrier.
//
// Accesses:
//   - Each variable remembers the epoch (goroutine, clock) of its last write
//     and the epoch of the last read per goroutine
//   - An access conflicts with an earlier one by goroutine u at clock c
//     unless c <= Ct[u], i.e. the earlier access happened-before this one
//
// Example:
//
//	a := hb.NewAuditor()
//	lock := rwlock.New(rwlock.WithTracer(a))
//
//	// in each worker
//	lock.Lock()
//	a.Write("balance")
//	balance++
//	lock.Unlock()
//
//	// after the workers are done
//	if err := a.Err(); err != nil {
//		t.Fatal(err)
//	}
//
// Goroutine identity is taken from the runtime's stack header, which costs
// about a microsecond per call. The auditor is a verification tool for tests
// and stress runs, not something to leave on in production paths.
package hb
