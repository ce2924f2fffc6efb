package thread

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxThreads is the budget of DefaultLimiter. It stays below the Go
// runtime's default limit of 10000 OS threads (debug.SetMaxThreads), which
// is fatal when crossed.
const DefaultMaxThreads = 8192

var defaultLimiter = NewLimiter(DefaultMaxThreads)

// DefaultLimiter returns the process-wide limiter used when a spawn does not
// pass WithLimiter.
func DefaultLimiter() *Limiter {
	return defaultLimiter
}

// Limiter caps the number of live threads spawned against it.
//
// Thread Safety: All methods are safe for concurrent use.
type Limiter struct {
	sem  *semaphore.Weighted
	max  int64
	live atomic.Int64
}

// NewLimiter returns a limiter admitting at most n live threads.
// Values below 1 are treated as 1.
func NewLimiter(n int64) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{
		sem: semaphore.NewWeighted(n),
		max: n,
	}
}

// Max returns the budget.
func (l *Limiter) Max() int64 {
	return l.max
}

// Live returns the number of threads currently counted.
func (l *Limiter) Live() int64 {
	return l.live.Load()
}

// acquire takes one slot without blocking. A nil limiter admits everything.
func (l *Limiter) acquire() error {
	if l == nil {
		return nil
	}
	if !l.sem.TryAcquire(1) {
		return ErrResourceExhausted
	}
	l.live.Add(1)
	return nil
}

// release returns one slot.
func (l *Limiter) release() {
	if l == nil {
		return
	}
	l.live.Add(-1)
	l.sem.Release(1)
}
