package rwlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/threadsync/hb"
)

const eventually = 5 * time.Second

// TestRWLock_ZeroValue verifies the zero value is an unlocked lock.
func TestRWLock_ZeroValue(t *testing.T) {
	var l RWLock

	assert.Equal(t, State{}, l.Snapshot())
	l.Lock()
	assert.True(t, l.Snapshot().Writer)
	l.Unlock()
	l.RLock()
	assert.Equal(t, 1, l.Snapshot().Readers)
	l.RUnlock()
	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_TryVariants tests TryLock and TryRLock against every lock state.
func TestRWLock_TryVariants(t *testing.T) {
	l := New()

	require.True(t, l.TryRLock())
	require.True(t, l.TryRLock(), "readers share the lock")
	assert.False(t, l.TryLock(), "writer excluded by readers")
	assert.Equal(t, 2, l.Snapshot().Readers)

	l.Unlock()
	l.Unlock()

	require.True(t, l.TryLock())
	assert.False(t, l.TryLock(), "writer excluded by writer")
	assert.False(t, l.TryRLock(), "reader excluded by writer")
	assert.Equal(t, State{Writer: true}, l.Snapshot(), "failed attempts leave no trace")
	l.Unlock()

	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_UnlockUnlockedPanics verifies the ErrNotLocked panic.
func TestRWLock_UnlockUnlockedPanics(t *testing.T) {
	l := New()
	assert.PanicsWithValue(t, ErrNotLocked, func() { l.Unlock() })

	l.Lock()
	l.Unlock()
	assert.PanicsWithValue(t, ErrNotLocked, func() { l.RUnlock() })
}

// TestRWLock_ReadersShare verifies several readers hold the lock at once.
func TestRWLock_ReadersShare(t *testing.T) {
	l := New()
	const readers = 4

	var inside sync.WaitGroup
	inside.Add(readers)
	release := make(chan struct{})
	var done sync.WaitGroup
	for i := 0; i < readers; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			l.RLock()
			inside.Done()
			<-release
			l.RUnlock()
		}()
	}

	inside.Wait()
	assert.Equal(t, readers, l.Snapshot().Readers)
	close(release)
	done.Wait()
	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_MutualExclusion hammers the lock and checks the invariants
// "at most one writer" and "never a writer together with readers".
func TestRWLock_MutualExclusion(t *testing.T) {
	l := New()
	var writers, readers atomic.Int32
	var bad atomic.Int32

	iterations := 2000
	if testing.Short() {
		iterations = 200
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				l.Lock()
				if writers.Add(1) != 1 || readers.Load() != 0 {
					bad.Add(1)
				}
				writers.Add(-1)
				l.Unlock()
			}
		}()
	}
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				l.RLock()
				readers.Add(1)
				if writers.Load() != 0 {
					bad.Add(1)
				}
				readers.Add(-1)
				l.RUnlock()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, bad.Load())
	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_WriterPreference verifies that a waiting writer blocks new
// readers and is served before them.
func TestRWLock_WriterPreference(t *testing.T) {
	l := New()
	l.RLock()

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		l.Lock()
		record("writer")
		l.Unlock()
	}()
	require.Eventually(t, func() bool { return l.Snapshot().WaitingWriters == 1 },
		eventually, time.Millisecond)

	assert.False(t, l.TryRLock(), "a waiting writer must turn readers away")

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		l.RLock()
		record("reader")
		l.RUnlock()
	}()
	require.Eventually(t, func() bool { return l.Snapshot().WaitingReaders == 1 },
		eventually, time.Millisecond)

	l.RUnlock()
	<-writerDone
	<-readerDone

	assert.Equal(t, []string{"writer", "reader"}, order)
	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_WriterUnlockWakesAllReaders verifies a broadcast to readers
// when no writer waits.
func TestRWLock_WriterUnlockWakesAllReaders(t *testing.T) {
	l := New()
	l.Lock()

	const readers = 5
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RLock()
			l.RUnlock()
		}()
	}
	require.Eventually(t, func() bool { return l.Snapshot().WaitingReaders == readers },
		eventually, time.Millisecond)

	l.Unlock()
	wg.Wait()
	assert.Equal(t, State{}, l.Snapshot())
}

// TestRWLock_RLocker verifies the read-side sync.Locker view.
func TestRWLock_RLocker(t *testing.T) {
	l := New()
	rl := l.RLocker()

	rl.Lock()
	assert.Equal(t, 1, l.Snapshot().Readers)
	assert.False(t, l.TryLock())
	rl.Unlock()
	assert.True(t, l.TryLock())
	l.Unlock()
}

// TestRWLock_TracerOrdersAccesses runs guarded readers and writers under an
// auditor and expects no unordered access.
func TestRWLock_TracerOrdersAccesses(t *testing.T) {
	a := hb.NewAuditor()
	l := New(WithTracer(a))
	shared := 0

	var wg sync.WaitGroup
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Lock()
				a.Write("shared")
				shared++
				l.Unlock()
			}
		}()
	}
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.RLock()
				a.Read("shared")
				_ = shared
				l.RUnlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 150, shared)
	assert.NoError(t, a.Err())
}

// TestRWLock_WithoutTracerAuditorComplains is the control for the test
// above: the same accesses with no reported edges are flagged.
func TestRWLock_WithoutTracerAuditorComplains(t *testing.T) {
	a := hb.NewAuditor()
	l := New()

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock()
			a.Write("shared")
			l.Unlock()
		}()
	}
	wg.Wait()

	assert.Error(t, a.Err())
}

func BenchmarkRWLock_Read(b *testing.B) {
	l := New()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.RLock()
			l.RUnlock()
		}
	})
}

func BenchmarkRWLock_Write(b *testing.B) {
	l := New()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Lock()
			l.Unlock()
		}
	})
}
