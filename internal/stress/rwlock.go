package stress

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kolkov/threadsync/hb"
	"github.com/kolkov/threadsync/internal/clock"
	"github.com/kolkov/threadsync/rwlock"
)

// RunRWLock runs Writers writer threads and Readers reader threads against
// one RWLock. Writers increment a shared value; readers read it. Each side
// checks the exclusion invariants from inside the critical section. Every
// 16th read first tries TryRLock; refusals while writers queue are the
// writer preference at work.
//
// With Audit set, the lock reports its edges to an hb.Auditor and every
// access to the shared value is audited.
//
// Counters: reads, writes, try_refused, exclusion_breaches.
func RunRWLock(cfg Config, logger *slog.Logger) (Result, error) {
	cfg = cfg.withDefaults()
	res := newResult("rwlock")

	var auditor *hb.Auditor
	var opts []rwlock.Option
	if cfg.Audit {
		auditor = hb.NewAuditor()
		opts = append(opts, rwlock.WithTracer(auditor))
	}
	l := rwlock.New(opts...)

	var (
		value      int64
		readersIn  atomic.Int32
		writersIn  atomic.Int32
		reads      atomic.Int64
		writes     atomic.Int64
		tryRefused atomic.Int64
		breaches   atomic.Int64
	)
	fails := newFailures(16)

	writer := func() {
		for n := 0; n < cfg.Iterations; n++ {
			l.Lock()
			if w := writersIn.Add(1); w != 1 || readersIn.Load() != 0 {
				breaches.Add(1)
				fails.add(fmt.Errorf("writer inside with %d writers and %d readers", w, readersIn.Load()))
			}
			if auditor != nil {
				auditor.Write("value")
			}
			value++
			writersIn.Add(-1)
			l.Unlock()
			writes.Add(1)
		}
	}

	reader := func() {
		for n := 0; n < cfg.Iterations; n++ {
			if n%16 != 0 || !l.TryRLock() {
				if n%16 == 0 {
					tryRefused.Add(1)
				}
				l.RLock()
			}
			readersIn.Add(1)
			if w := writersIn.Load(); w != 0 {
				breaches.Add(1)
				fails.add(fmt.Errorf("reader inside with %d writers", w))
			}
			if auditor != nil {
				auditor.Read("value")
			}
			_ = value
			readersIn.Add(-1)
			l.RUnlock()
			reads.Add(1)
		}
	}

	sw := clock.Start()
	err := runWorkers(cfg.Writers+cfg.Readers, "rw", logger, func(i int) {
		if i < cfg.Writers {
			writer()
		} else {
			reader()
		}
	})
	res.Elapsed = sw.Elapsed()

	res.Ops = reads.Load() + writes.Load()
	res.Counters["reads"] = reads.Load()
	res.Counters["writes"] = writes.Load()
	res.Counters["try_refused"] = tryRefused.Load()
	res.Counters["exclusion_breaches"] = breaches.Load()

	errs := []error{err, fails.err()}
	if want := int64(cfg.Writers) * int64(cfg.Iterations); err == nil && value != want {
		errs = append(errs, fmt.Errorf("lost updates: value %d, want %d", value, want))
	}
	if auditor != nil {
		errs = append(errs, auditor.Err())
		res.Counters["hb_violations"] = int64(len(auditor.Violations()))
	}
	return res, joinErrors(errs...)
}
