package futex

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// tableSize is the number of hash buckets in a parking table. It is prime so
// that addresses sharing their low bits still spread across buckets.
const tableSize = 251

// sleeper is one goroutine parked on an address.
type sleeper struct {
	addr  *uint32
	ready chan struct{}
}

// bucket holds the sleepers whose address hashes to it, in arrival order.
type bucket struct {
	mu       sync.Mutex
	sleepers []*sleeper
}

// table is a userspace futex: a fixed array of buckets, each guarded by its
// own mutex. The value comparison in wait and the enqueue happen under the
// bucket lock, and wake dequeues under the same lock, which is what makes the
// pair free of lost wakeups.
//
// Thread Safety: All methods are safe for concurrent use.
type table struct {
	buckets [tableSize]bucket
}

func newTable() *table {
	return &table{}
}

// bucketFor hashes an address onto its bucket.
func (t *table) bucketFor(addr *uint32) *bucket {
	h := uintptr(unsafe.Pointer(addr))
	// Words are at least 4-byte aligned; drop the always-zero bits.
	h >>= 2
	h ^= h >> 16
	return &t.buckets[h%tableSize]
}

// wait parks the caller on addr while *addr == val.
// Returns true iff the deadline passed before a wakeup.
func (t *table) wait(addr *uint32, val uint32, deadline time.Time) bool {
	b := t.bucketFor(addr)

	b.mu.Lock()
	if atomic.LoadUint32(addr) != val {
		b.mu.Unlock()
		return false
	}
	var timeout time.Duration
	if !deadline.IsZero() {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			b.mu.Unlock()
			return true
		}
	}
	s := &sleeper{addr: addr, ready: make(chan struct{})}
	b.sleepers = append(b.sleepers, s)
	b.mu.Unlock()

	if deadline.IsZero() {
		<-s.ready
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.ready:
		return false
	case <-timer.C:
	}

	b.mu.Lock()
	removed := b.remove(s)
	b.mu.Unlock()
	// If a waker dequeued us between the timer firing and the relock, the
	// wakeup was consumed and must be reported as one.
	return removed
}

// wake wakes up to n sleepers on addr in FIFO order.
func (t *table) wake(addr *uint32, n int) int {
	b := t.bucketFor(addr)

	b.mu.Lock()
	defer b.mu.Unlock()

	woken := 0
	kept := b.sleepers[:0]
	for _, s := range b.sleepers {
		if woken < n && s.addr == addr {
			close(s.ready)
			woken++
			continue
		}
		kept = append(kept, s)
	}
	// Clear the tail so dequeued sleepers can be collected.
	for i := len(kept); i < len(b.sleepers); i++ {
		b.sleepers[i] = nil
	}
	b.sleepers = kept
	return woken
}

// waiting returns the number of sleepers parked on addr.
func (t *table) waiting(addr *uint32) int {
	b := t.bucketFor(addr)

	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, s := range b.sleepers {
		if s.addr == addr {
			count++
		}
	}
	return count
}

// remove drops s from the bucket. The caller holds b.mu.
func (b *bucket) remove(s *sleeper) bool {
	for i, other := range b.sleepers {
		if other == s {
			copy(b.sleepers[i:], b.sleepers[i+1:])
			b.sleepers[len(b.sleepers)-1] = nil
			b.sleepers = b.sleepers[:len(b.sleepers)-1]
			return true
		}
	}
	return false
}
