// Package barrier implements a reusable (cyclic) rendezvous barrier.
//
// A CyclicBarrier created for N threads blocks every caller of Await until N
// of them have arrived, releases all N together and then becomes usable for
// the next round. Each round is called a cycle and runs through two phases:
//
//	trap     threads arrive and wait; the N-th arrival flips to release
//	release  the N threads of the cycle leave; the last one flips back to trap
//
// A thread arriving for the next cycle while the previous one is still
// draining waits at an entry gate, so no thread can be counted in two cycles
// and a fast thread can never overtake the slow ones by a whole cycle.
//
// # Reset
//
// Reset releases the threads trapped in the current cycle; their Await
// returns ErrReset. Threads already released from a completed cycle are not
// affected.
//
// # Blocking
//
// Await parks the calling OS thread in the kernel (futex on Linux), so each
// thread waiting at the barrier holds its own OS thread. The runtime aborts
// the process once more than debug.SetMaxThreads threads exist (10000 by
// default), which bounds the practical thread count of a barrier.
//
// # Example
//
//	b := barrier.New(workers)
//	for w := 0; w < workers; w++ {
//		go func() {
//			for phase := 0; phase < phases; phase++ {
//				compute(phase)
//				if err := b.Await(); err != nil {
//					return
//				}
//			}
//		}()
//	}
package barrier
