package barrier

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/kolkov/threadsync/condition"
	"github.com/kolkov/threadsync/hb"
)

// ErrReset is returned by Await when the barrier was reset before the cycle
// the caller was waiting in completed.
var ErrReset = errors.New("barrier: reset while waiting")

// phase is the state of the current cycle.
type phase uint8

const (
	trap phase = iota
	release
)

// Option configures a CyclicBarrier.
type Option func(*CyclicBarrier)

// WithTracer reports the barrier's synchronization edges to t: every arrival
// is a shared release, every departure from a completed cycle an acquire.
func WithTracer(t hb.Tracer) Option {
	return func(b *CyclicBarrier) {
		b.tracer = t
	}
}

// CyclicBarrier is a reusable barrier for a fixed number of threads.
//
// Thread Safety: All methods are safe for concurrent use.
type CyclicBarrier struct {
	mu   sync.Mutex
	cond condition.Condition

	numThreads int
	state      phase
	trapped    int
	released   int

	// cycle identifies the current trap phase. It advances when a cycle has
	// fully drained and when Reset discards the trapped threads.
	cycle uint64

	tracer hb.Tracer
}

// New returns a barrier for numThreads threads.
//
// Parameters:
//   - numThreads: Number of threads per rendezvous; values below 1 are
//     treated as 1, which makes Await return immediately
//   - opts: Optional configuration
//
// Returns:
//   - *CyclicBarrier: Barrier in the trap phase with nobody waiting
func New(numThreads int, opts ...Option) *CyclicBarrier {
	if numThreads < 1 {
		numThreads = 1
	}
	b := &CyclicBarrier{numThreads: numThreads}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Await blocks until ThreadCount threads, the caller included, have called
// Await for the current cycle.
//
// Returns:
//   - error: nil after a full rendezvous, ErrReset if the barrier was reset
//     while the caller was trapped
func (b *CyclicBarrier) Await() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.state == release {
		b.cond.Wait(&b.mu)
	}

	cycle := b.cycle
	b.trapped++
	b.arrived()

	if b.trapped == b.numThreads {
		b.state = release
		b.cond.Broadcast()
	} else {
		for b.state == trap && b.cycle == cycle {
			b.cond.Wait(&b.mu)
		}
		if b.cycle != cycle {
			return ErrReset
		}
	}

	b.departed()
	b.released++
	if b.released == b.numThreads {
		b.state = trap
		b.trapped = 0
		b.released = 0
		b.cycle++
		b.cond.Broadcast()
	}
	return nil
}

// ThreadCount returns the number of threads per rendezvous.
func (b *CyclicBarrier) ThreadCount() int {
	return b.numThreads
}

// WaitingThreadCount returns the number of threads that have arrived in the
// trap phase, or, while a completed cycle drains, the number that have not
// left yet.
func (b *CyclicBarrier) WaitingThreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == trap {
		return b.trapped
	}
	return b.numThreads - b.released
}

// Reset releases every thread trapped in the current cycle with ErrReset and
// starts a fresh cycle. During the release phase it has no effect: the
// completed cycle drains normally and the barrier returns to the trap phase
// on its own.
func (b *CyclicBarrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != trap || b.trapped == 0 {
		return
	}
	b.trapped = 0
	b.cycle++
	b.cond.Broadcast()
}

// arrived reports an arrival edge. The caller holds b.mu.
func (b *CyclicBarrier) arrived() {
	if b.tracer != nil {
		b.tracer.ReleaseMerge(uintptr(unsafe.Pointer(b)))
	}
}

// departed reports a departure edge. The caller holds b.mu.
func (b *CyclicBarrier) departed() {
	if b.tracer != nil {
		b.tracer.Acquire(uintptr(unsafe.Pointer(b)))
	}
}
